package handler

import (
	"github.com/gin-gonic/gin"
	webquoteapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/webquote"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// QuoteRequestHandler handles quote requests sent from the website
type QuoteRequestHandler struct {
	BaseHandler
	quotes *webquoteapp.QuoteService
}

// NewQuoteRequestHandler creates a new QuoteRequestHandler
func NewQuoteRequestHandler(quotes *webquoteapp.QuoteService) *QuoteRequestHandler {
	return &QuoteRequestHandler{quotes: quotes}
}

// Submit godoc
// @Summary      Request a quote
// @Description  Rate limited per client IP; bot submissions are accepted and discarded
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body webquoteapp.SubmitRequest true "Quote request"
// @Success      201 {object} APIResponse[webquoteapp.SubmitResponse]
// @Failure      429 {object} ErrorResponse
// @Router       /public/quote-requests [post]
func (h *QuoteRequestHandler) Submit(c *gin.Context) {
	var req webquoteapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.quotes.Submit(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// List godoc
// @Summary      List quote requests
// @Tags         quote-requests
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        status query string false "Status"
// @Param        search query string false "Search"
// @Success      200 {object} APIResponse[webquoteapp.ListResponse]
// @Security     BearerAuth
// @Router       /quote-requests [get]
func (h *QuoteRequestHandler) List(c *gin.Context) {
	var req webquoteapp.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.quotes.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

func (h *QuoteRequestHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.quotes.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Review updates the status, answer or quoted price of a request
func (h *QuoteRequestHandler) Review(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req webquoteapp.ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.quotes.Review(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

func (h *QuoteRequestHandler) AddNote(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req webquoteapp.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.quotes.AddNote(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func (h *QuoteRequestHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ConvertToLead godoc
// @Summary      Convert a quote request into a lead
// @Tags         quote-requests
// @Produce      json
// @Param        id path string true "Quote request ID"
// @Success      201 {object} APIResponse[webquoteapp.ConvertResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quote-requests/{id}/convert [post]
func (h *QuoteRequestHandler) ConvertToLead(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.quotes.ConvertToLead(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// QuoteRequestRoutes creates the admin route group for quote requests
func QuoteRequestRoutes(h *QuoteRequestHandler) *router.DomainGroup {
	quotes := middleware.RequireResource(identity.ResourceQuotes)
	g := router.NewDomainGroup("quote-requests", "/quote-requests")
	g.GET("", quotes, h.List)
	g.GET("/:id", quotes, h.Get)
	g.PUT("/:id", quotes, h.Review)
	g.POST("/:id/notes", quotes, h.AddNote)
	g.POST("/:id/convert", quotes, h.ConvertToLead)
	g.DELETE("/:id", quotes, h.Delete)
	return g
}
