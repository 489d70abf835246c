package handler

import (
	"github.com/gin-gonic/gin"
	contactapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// MessageHandler handles the contact inbox
type MessageHandler struct {
	BaseHandler
	messages *contactapp.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages *contactapp.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Submit godoc
// @Summary      Send a contact message
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body contactapp.SubmitRequest true "Message"
// @Success      201 {object} APIResponse[contactapp.SubmitResponse]
// @Failure      429 {object} ErrorResponse
// @Router       /public/contact [post]
func (h *MessageHandler) Submit(c *gin.Context) {
	var req contactapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.messages.Submit(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// List godoc
// @Summary      List inbox messages
// @Tags         messages
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        read query bool false "Read flag"
// @Param        archived query bool false "Show archived messages"
// @Param        type query string false "RECEIVED or SENT"
// @Success      200 {object} APIResponse[contactapp.ListResponse]
// @Security     BearerAuth
// @Router       /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	var req contactapp.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.messages.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Get returns a message and marks it read
func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

func (h *MessageHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req contactapp.UpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.messages.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reply godoc
// @Summary      Reply to a message by email
// @Description  The reply is stored even when the email cannot be sent
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id path string true "Message ID"
// @Param        request body contactapp.ReplyRequest true "Reply"
// @Success      201 {object} APIResponse[contactapp.ReplyResponse]
// @Security     BearerAuth
// @Router       /messages/{id}/reply [post]
func (h *MessageHandler) Reply(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req contactapp.ReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.messages.Reply(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// MessageRoutes creates the route group for the inbox
func MessageRoutes(h *MessageHandler) *router.DomainGroup {
	messages := middleware.RequireResource(identity.ResourceMessages)
	g := router.NewDomainGroup("messages", "/messages")
	g.GET("", messages, h.List)
	g.GET("/:id", messages, h.Get)
	g.PATCH("/:id", messages, h.Update)
	g.DELETE("/:id", messages, h.Delete)
	g.POST("/:id/reply", messages, h.Reply)
	return g
}
