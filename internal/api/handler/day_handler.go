package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

// DayHandler 训练日 HTTP 处理器
type DayHandler struct {
	daySvc service.DayService
}

// NewDayHandler 创建 DayHandler
func NewDayHandler(daySvc service.DayService) *DayHandler {
	return &DayHandler{daySvc: daySvc}
}

// Create POST /api/days/new
func (h *DayHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateDayRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.daySvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to create day")
		return
	}
	response.Created(c, result)
}

// Update PUT /api/days
func (h *DayHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateDayRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.daySvc.Update(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to update day")
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/days/:id
func (h *DayHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrDayNotFound)
	if !ok {
		return
	}

	if err := h.daySvc.Delete(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete day")
		return
	}
	response.NoContent(c)
}
