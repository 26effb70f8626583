package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ProgramHandler 训练计划模块 HTTP 处理器（含导出）
type ProgramHandler struct {
	programSvc service.ProgramService
	exportSvc  service.ExportService
}

// NewProgramHandler 创建 ProgramHandler
func NewProgramHandler(programSvc service.ProgramService, exportSvc service.ExportService) *ProgramHandler {
	return &ProgramHandler{programSvc: programSvc, exportSvc: exportSvc}
}

// Create 创建训练计划
// POST /api/programs/new
func (h *ProgramHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.programSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to create program")
		return
	}
	response.Created(c, result)
}

// List 当前用户的训练计划列表
// GET /api/programs
func (h *ProgramHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.programSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err, "Failed to fetch programs")
		return
	}
	response.OK(c, result)
}

// Get 训练计划完整树
// GET /api/programs/:id
func (h *ProgramHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrProgramNotFound)
	if !ok {
		return
	}

	result, err := h.programSvc.Get(c.Request.Context(), id, userID)
	if err != nil {
		response.Fail(c, err, "Failed to fetch program")
		return
	}
	response.OK(c, result)
}

// Rename 重命名训练计划
// PATCH /api/programs/:id
func (h *ProgramHandler) Rename(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.RenameProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	id, ok := pathID(c, service.ErrProgramNotFound)
	if !ok {
		return
	}

	result, err := h.programSvc.Rename(c.Request.Context(), id, &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to rename program")
		return
	}
	response.OK(c, result)
}

// Delete 删除训练计划及其全部子项
// DELETE /api/programs/:id
func (h *ProgramHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrProgramNotFound)
	if !ok {
		return
	}

	if err := h.programSvc.Delete(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete program")
		return
	}
	response.NoContent(c)
}

// ExportXLSX 导出 Excel
// GET /api/programs/:id/export.xlsx
func (h *ProgramHandler) ExportXLSX(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrProgramNotFound)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), id, userID)
	if err != nil {
		response.Fail(c, err, "Failed to export program")
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出日历
// GET /api/programs/:id/calendar.ics?start=YYYY-MM-DD
func (h *ProgramHandler) ExportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ExportCalendarRequest
	if !bindQuery(c, &req) {
		return
	}

	id, ok := pathID(c, service.ErrProgramNotFound)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportICS(c.Request.Context(), id, userID, req.Start)
	if err != nil {
		response.Fail(c, err, "Failed to export calendar")
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeICS, data)
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
