package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/artisenpaiii/liftlog/internal/dto"
	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

// BlockHandler 训练阶段 HTTP 处理器
type BlockHandler struct {
	blockSvc service.BlockService
}

// NewBlockHandler 创建 BlockHandler
func NewBlockHandler(blockSvc service.BlockService) *BlockHandler {
	return &BlockHandler{blockSvc: blockSvc}
}

// Create POST /api/blocks/new
func (h *BlockHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.blockSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to create block")
		return
	}
	response.Created(c, result)
}

// Rename PATCH /api/blocks/:id
func (h *BlockHandler) Rename(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.RenameBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	id, ok := pathID(c, service.ErrBlockNotFound)
	if !ok {
		return
	}

	result, err := h.blockSvc.Rename(c.Request.Context(), id, &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to rename block")
		return
	}
	response.OK(c, result)
}

// Reorder PATCH /api/blocks/order
func (h *BlockHandler) Reorder(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ReorderBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.blockSvc.Reorder(c.Request.Context(), &req, userID)
	if err != nil {
		response.Fail(c, err, "Failed to reorder blocks")
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/blocks/:id
func (h *BlockHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, service.ErrBlockNotFound)
	if !ok {
		return
	}

	if err := h.blockSvc.Delete(c.Request.Context(), id, userID); err != nil {
		response.Fail(c, err, "Failed to delete block")
		return
	}
	response.NoContent(c)
}
