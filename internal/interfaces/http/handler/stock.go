package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
)

// StockHandler handles stock movements of tracked items
type StockHandler struct {
	BaseHandler
	stock *catalogapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock *catalogapp.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// Move godoc
// @Summary      Record a stock movement
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.MovementRequest true "Movement"
// @Success      201 {object} APIResponse[catalogapp.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/stock/movements [post]
func (h *StockHandler) Move(c *gin.Context) {
	var req catalogapp.MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.stock.Move(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// BulkAdjust godoc
// @Summary      Apply a stock count
// @Description  Creates an adjustment for every item whose counted level differs
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.BulkAdjustmentRequest true "Counted levels"
// @Success      200 {object} APIResponse[catalogapp.BulkAdjustmentResult]
// @Security     BearerAuth
// @Router       /catalog/stock/adjustments [post]
func (h *StockHandler) BulkAdjust(c *gin.Context) {
	var req catalogapp.BulkAdjustmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.stock.BulkAdjust(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Recent lists the latest movements
func (h *StockHandler) Recent(c *gin.Context) {
	list, err := h.stock.Recent(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// History lists the movements of one item
func (h *StockHandler) History(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.stock.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Overview returns stock statistics with low and over stock items
func (h *StockHandler) Overview(c *gin.Context) {
	res, err := h.stock.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// LowStock lists the items under their minimum level
func (h *StockHandler) LowStock(c *gin.Context) {
	items, err := h.stock.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
