package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

// TableHandler 训练日表格（列 / 行 / 单元格）HTTP 处理器
type TableHandler struct {
	tableSvc service.TableService
}

// NewTableHandler 创建 TableHandler
func NewTableHandler(tableSvc service.TableService) *TableHandler {
	return &TableHandler{tableSvc: tableSvc}
}

// ── 列 ──

// AddColumn POST /api/days/column
func (h *TableHandler) AddColumn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateColumnRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.AddColumn(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to add column")
		return
	}
	response.Created(c, result)
}

// RenameColumn PUT /api/days/column
func (h *TableHandler) RenameColumn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.RenameColumnRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.RenameColumn(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to rename column")
		return
	}
	response.OK(c, result)
}

// ReorderColumn PATCH /api/days/column/order
func (h *TableHandler) ReorderColumn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ReorderColumnRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.ReorderColumn(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to reorder columns")
		return
	}
	response.OK(c, result)
}

// DeleteColumn DELETE /api/days/column/:id
func (h *TableHandler) DeleteColumn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrColumnNotFound)
	if !ok {
		return
	}

	if err := h.tableSvc.DeleteColumn(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete column")
		return
	}
	response.NoContent(c)
}

// ── 行 ──

// AddRow POST /api/days/row
func (h *TableHandler) AddRow(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateRowRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.AddRow(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to add row")
		return
	}
	response.Created(c, result)
}

// ReorderRow PATCH /api/days/row/order
func (h *TableHandler) ReorderRow(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ReorderRowRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.ReorderRow(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to reorder rows")
		return
	}
	response.OK(c, result)
}

// DeleteRow DELETE /api/days/row/:id
func (h *TableHandler) DeleteRow(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrRowNotFound)
	if !ok {
		return
	}

	if err := h.tableSvc.DeleteRow(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete row")
		return
	}
	response.NoContent(c)
}

// ── 单元格 ──

// UpdateCell PUT /api/days/cell
func (h *TableHandler) UpdateCell(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateCellRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.UpdateCell(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to update cell")
		return
	}
	response.OK(c, result)
}

// UpsertCell PUT /api/days/cell/upsert
func (h *TableHandler) UpsertCell(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpsertCellRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tableSvc.UpsertCell(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to save cell")
		return
	}
	response.OK(c, result)
}
