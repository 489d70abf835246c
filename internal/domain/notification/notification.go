// Package notification holds the in-app notifications shown to back office users.
package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Type classifies a notification
type Type string

const (
	TypeNewLead             Type = "NEW_LEAD"
	TypeNewOrder            Type = "NEW_ORDER"
	TypeNewQuote            Type = "NEW_QUOTE"
	TypeNewMessage          Type = "NEW_MESSAGE"
	TypePaymentReceived     Type = "PAYMENT_RECEIVED"
	TypeInvoiceOverdue      Type = "INVOICE_OVERDUE"
	TypeQuoteExpiring       Type = "QUOTE_EXPIRING"
	TypeLowStock            Type = "LOW_STOCK"
	TypeAppointmentReminder Type = "APPOINTMENT_REMINDER"
	TypeDocumentIssued      Type = "DOCUMENT_ISSUED"
)

var validTypes = map[Type]bool{
	TypeNewLead: true, TypeNewOrder: true, TypeNewQuote: true, TypeNewMessage: true,
	TypePaymentReceived: true, TypeInvoiceOverdue: true, TypeQuoteExpiring: true,
	TypeLowStock: true, TypeAppointmentReminder: true, TypeDocumentIssued: true,
}

// IsValid reports whether t is a known type
func (t Type) IsValid() bool {
	return validTypes[t]
}

// Notification is one entry in a user's notification list
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1"`
	Type      Type           `gorm:"type:varchar(30);not null"`
	Title     string         `gorm:"type:varchar(200);not null"`
	Message   *string        `gorm:"type:text"`
	Link      *string        `gorm:"type:varchar(500)"`
	Metadata  map[string]any `gorm:"type:text;serializer:json"`
	Read      bool           `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// Draft is a notification not yet addressed to anyone
type Draft struct {
	Type     Type
	Title    string
	Message  string
	Link     string
	Metadata map[string]any
}

// Validate checks the draft can be delivered
func (d Draft) Validate() error {
	var details []shared.ErrorDetail
	if !d.Type.IsValid() {
		details = append(details, shared.ErrorDetail{Field: "type", Message: "Type de notification inconnu"})
	}
	if strings.TrimSpace(d.Title) == "" {
		details = append(details, shared.ErrorDetail{Field: "title", Message: "Titre requis"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données manquantes", details...)
	}
	return nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// For addresses the draft to each user
func (d Draft) For(users []uuid.UUID, now time.Time) []Notification {
	out := make([]Notification, len(users))
	for i, u := range users {
		out[i] = Notification{
			ID:        uuid.New(),
			UserID:    u,
			Type:      d.Type,
			Title:     strings.TrimSpace(d.Title),
			Message:   optional(d.Message),
			Link:      optional(d.Link),
			Metadata:  d.Metadata,
			CreatedAt: now,
		}
	}
	return out
}

// Filter narrows a user's list
type Filter struct {
	UnreadOnly bool
	Limit      int
}

// Repository persists notifications. Every operation is scoped to one user.
type Repository interface {
	CreateMany(ctx context.Context, ns []Notification) error
	FindForUser(ctx context.Context, userID uuid.UUID, f Filter) ([]Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
