package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// SubmitRequest is the public contact form
type SubmitRequest struct {
	publicform.Trap
	Name    string  `json:"name" binding:"required,max=100"`
	Email   string  `json:"email" binding:"required,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Subject *string `json:"subject" binding:"omitempty,max=200"`
	Content string  `json:"content" binding:"required,max=5000"`
	Locale  string  `json:"locale" binding:"omitempty,oneof=fr en es ar"`
}

// SubmitResponse acknowledges a message. ID is empty for discarded bot posts.
type SubmitResponse struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Message string     `json:"message"`
}

// ListRequest filters the inbox; archived messages are hidden unless asked for
type ListRequest struct {
	Page      int        `form:"page"`
	Limit     int        `form:"limit"`
	Search    string     `form:"search"`
	Read      *bool      `form:"read"`
	Archived  *bool      `form:"archived"`
	Direction string     `form:"type" binding:"omitempty,oneof=RECEIVED SENT"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
	SortBy    string     `form:"sortBy"`
	SortOrder string     `form:"sortOrder"`
}

// UpdateRequest flags a message
type UpdateRequest struct {
	Read     *bool `json:"read"`
	Starred  *bool `json:"starred"`
	Archived *bool `json:"archived"`
}

// ReplyRequest answers a message by email
type ReplyRequest struct {
	To      string `json:"to" binding:"omitempty,email"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required"`
}

// MessageResponse is a message as shown in the inbox
type MessageResponse struct {
	ID          uuid.UUID         `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       *string           `json:"phone,omitempty"`
	Subject     *string           `json:"subject,omitempty"`
	Content     string            `json:"content"`
	Locale      string            `json:"locale"`
	Read        bool              `json:"read"`
	ReadAt      *time.Time        `json:"readAt,omitempty"`
	Starred     bool              `json:"starred"`
	Archived    bool              `json:"archived"`
	InReplyToID *uuid.UUID        `json:"inReplyToId,omitempty"`
	RepliedAt   *time.Time        `json:"repliedAt,omitempty"`
	EmailSent   bool              `json:"emailSent"`
	EmailError  *string           `json:"emailError,omitempty"`
	Replies     []MessageResponse `json:"replies,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ToMessageResponse maps a message to its response
func ToMessageResponse(m *contact.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		Type:        string(m.Direction),
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Subject:     m.Subject,
		Content:     m.Content,
		Locale:      m.Locale,
		Read:        m.Read,
		ReadAt:      m.ReadAt,
		Starred:     m.Starred,
		Archived:    m.Archived,
		InReplyToID: m.InReplyToID,
		RepliedAt:   m.RepliedAt,
		EmailSent:   m.EmailSent,
		EmailError:  m.EmailError,
		CreatedAt:   m.CreatedAt,
	}
}

// ListResponse is a page of the inbox with its counters
type ListResponse struct {
	shared.Paginated[MessageResponse]
	contact.Counters
}

// ReplyResponse reports the stored reply and whether the email left
type ReplyResponse struct {
	Reply      MessageResponse `json:"reply"`
	EmailSent  bool            `json:"emailSent"`
	EmailError *string         `json:"emailError,omitempty"`
}
