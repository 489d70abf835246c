package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
)

// ListRequest filters the current user's notifications
type ListRequest struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit"`
}

// MarkReadRequest selects notifications to mark as read
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
	All bool        `json:"all"`
}

// DeleteRequest selects notifications to delete
type DeleteRequest struct {
	IDs      []uuid.UUID `json:"ids"`
	ReadOnly bool        `json:"readOnly"`
}

// NotificationResponse is a notification as returned by the API
type NotificationResponse struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   *string        `json:"message,omitempty"`
	Link      *string        `json:"link,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ToNotificationResponse maps a notification to its response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Metadata:  n.Metadata,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ListResponse is the user's list with the unread count
type ListResponse struct {
	Items       []NotificationResponse `json:"data"`
	UnreadCount int64                  `json:"unreadCount"`
}
