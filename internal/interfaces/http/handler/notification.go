package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// NotificationHandler serves the in-app notifications of the current user
type NotificationHandler struct {
	BaseHandler
	notifications *notificationapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *notificationapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) user(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.CurrentUserID(c)
	if id == uuid.Nil {
		h.Unauthorized(c, "Authentification requise")
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Unread only"
// @Param        limit query int false "Maximum count" default(50)
// @Success      200 {object} APIResponse[notificationapp.ListResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req notificationapp.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.notifications.List(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// UnreadCount returns the badge counter
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"unreadCount": n})
}

// MarkRead marks the given notifications, or all of them, as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req notificationapp.MarkReadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": n})
}

// Delete removes the given notifications, or every read one
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.user(c)
	if !ok {
		return
	}
	var req notificationapp.DeleteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.Delete(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": n})
}

// NotificationRoutes creates the route group for notifications
func NotificationRoutes(h *NotificationHandler) *router.DomainGroup {
	g := router.NewDomainGroup("notifications", "/notifications")
	g.GET("", h.List)
	g.GET("/unread-count", h.UnreadCount)
	g.PATCH("/read", h.MarkRead)
	g.DELETE("", h.Delete)
	return g
}
