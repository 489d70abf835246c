package handler

import (
	"github.com/gin-gonic/gin"
	shopapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// OrderHandler handles shop orders and their payment
type OrderHandler struct {
	BaseHandler
	orders   *shopapp.OrderService
	checkout *shopapp.CheckoutService
}

// NewOrderHandler creates a new OrderHandler. checkout may be nil when card
// payments are not configured.
func NewOrderHandler(orders *shopapp.OrderService, checkout *shopapp.CheckoutService) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout}
}

// CancelRequest carries the optional reason of a cancellation
type CancelRequest struct {
	Note *string `json:"note"`
}

// Place godoc
// @Summary      Place an order
// @Description  Prices, shipping and stock come from the catalog, never from the cart
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body shopapp.PlaceOrderRequest true "Cart and customer"
// @Success      201 {object} APIResponse[shopapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /public/orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req shopapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Place(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Track godoc
// @Summary      Track an order
// @Tags         public
// @Produce      json
// @Param        orderNumber query string true "Order number"
// @Param        email query string true "Customer email"
// @Success      200 {object} APIResponse[shopapp.TrackingResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /public/orders/track [get]
func (h *OrderHandler) Track(c *gin.Context) {
	var req shopapp.TrackRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.orders.Track(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Checkout godoc
// @Summary      Open a card payment session
// @Tags         public
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[shopapp.CheckoutResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /public/orders/{id}/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if h.checkout == nil {
		h.BadRequest(c, "Le paiement par carte n'est pas disponible")
		return
	}
	res, err := h.checkout.CreateSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        status query string false "Order status"
// @Param        paymentStatus query string false "Payment status"
// @Param        range query string false "today, week or month"
// @Success      200 {object} APIResponse[shopapp.ListResponse]
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req shopapp.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.orders.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Get returns one order with its lines and tracking events
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Move an order along its workflow
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body shopapp.StatusRequest true "Status change"
// @Success      200 {object} APIResponse[shopapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req shopapp.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order and puts its stock back
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), id, req.Note, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Refund refunds a card payment through the payment provider
func (h *OrderHandler) Refund(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if h.checkout == nil {
		h.BadRequest(c, "Le paiement par carte n'est pas disponible")
		return
	}
	order, err := h.checkout.Refund(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// OrderRoutes creates the admin route group for shop orders
func OrderRoutes(h *OrderHandler) *router.DomainGroup {
	orders := middleware.RequireResource(identity.ResourceOrders)
	g := router.NewDomainGroup("orders", "/orders")
	g.GET("", orders, h.List)
	g.GET("/:id", orders, h.Get)
	g.PATCH("/:id/status", orders, h.UpdateStatus)
	g.POST("/:id/cancel", orders, h.Cancel)
	g.POST("/:id/refund", middleware.RequireRole(identity.RoleAdmin, identity.RoleManager, identity.RoleComptable), h.Refund)
	return g
}
