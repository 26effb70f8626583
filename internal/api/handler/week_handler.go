package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

// WeekHandler 训练周 HTTP 处理器
type WeekHandler struct {
	weekSvc service.WeekService
}

// NewWeekHandler 创建 WeekHandler
func NewWeekHandler(weekSvc service.WeekService) *WeekHandler {
	return &WeekHandler{weekSvc: weekSvc}
}

// Create POST /api/weeks/new
func (h *WeekHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateWeekRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.weekSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to create week")
		return
	}
	response.Created(c, result)
}

// Delete DELETE /api/weeks/:id
func (h *WeekHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrWeekNotFound)
	if !ok {
		return
	}

	if err := h.weekSvc.Delete(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete week")
		return
	}
	response.NoContent(c)
}
