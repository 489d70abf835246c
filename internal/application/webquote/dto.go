package webquote

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"github.com/shopspring/decimal"
)

// SubmitRequest is the public quote form
type SubmitRequest struct {
	publicform.Trap
	CustomerName  string   `json:"customerName" binding:"required,max=200"`
	CustomerEmail string   `json:"customerEmail" binding:"required,max=200"`
	CustomerPhone string   `json:"customerPhone" binding:"required,max=50"`
	Company       *string  `json:"company" binding:"omitempty,max=200"`
	City          *string  `json:"city" binding:"omitempty,max=100"`
	Address       *string  `json:"address" binding:"omitempty,max=500"`
	ProjectType   *string  `json:"projectType" binding:"omitempty,max=100"`
	Description   string   `json:"description" binding:"required,max=5000"`
	Budget        *string  `json:"budget" binding:"omitempty,max=100"`
	Timeline      *string  `json:"timeline" binding:"omitempty,max=100"`
	Attachments   []string `json:"attachments" binding:"omitempty,max=10,dive,url"`
	Locale        string   `json:"locale" binding:"omitempty,oneof=fr en es ar"`
	Source        string   `json:"source" binding:"omitempty,max=50"`
}

// SubmitResponse acknowledges a submission. ID is empty for discarded bot posts.
type SubmitResponse struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	QuoteNumber string     `json:"quoteNumber,omitempty"`
	Message     string     `json:"message"`
}

// ListRequest filters the admin list
type ListRequest struct {
	Page      int        `form:"page"`
	Limit     int        `form:"limit"`
	Search    string     `form:"search"`
	Status    string     `form:"status" binding:"omitempty,oneof=NEW IN_REVIEW QUOTED ACCEPTED REJECTED EXPIRED CONVERTED"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
	SortBy    string     `form:"sortBy"`
	SortOrder string     `form:"sortOrder"`
}

// ReviewRequest is an admin update of a request
type ReviewRequest struct {
	Status       *string          `json:"status" binding:"omitempty,oneof=NEW IN_REVIEW QUOTED ACCEPTED REJECTED EXPIRED"`
	Response     *string          `json:"response"`
	QuotedPrice  *decimal.Decimal `json:"quotedPrice"`
	ValidUntil   *time.Time       `json:"validUntil"`
	InternalNote *string          `json:"internalNote"`
}

// NoteRequest adds a remark
type NoteRequest struct {
	Content    string `json:"content" binding:"required"`
	IsInternal *bool  `json:"isInternal"`
}

// NoteResponse is a remark on a request
type NoteResponse struct {
	ID         uuid.UUID  `json:"id"`
	Content    string     `json:"content"`
	IsInternal bool       `json:"isInternal"`
	AuthorID   *uuid.UUID `json:"authorId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// QuoteResponse is a quote request as shown to the back office
type QuoteResponse struct {
	ID            uuid.UUID        `json:"id"`
	QuoteNumber   string           `json:"quoteNumber"`
	Status        string           `json:"status"`
	CustomerName  string           `json:"customerName"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerPhone string           `json:"customerPhone"`
	Company       *string          `json:"company,omitempty"`
	City          *string          `json:"city,omitempty"`
	Address       *string          `json:"address,omitempty"`
	ProjectType   *string          `json:"projectType,omitempty"`
	Description   string           `json:"description"`
	Budget        *string          `json:"budget,omitempty"`
	Timeline      *string          `json:"timeline,omitempty"`
	Attachments   []string         `json:"attachments"`
	Locale        string           `json:"locale"`
	Source        string           `json:"source"`
	Response      *string          `json:"response,omitempty"`
	QuotedPrice   *decimal.Decimal `json:"quotedPrice,omitempty"`
	ValidUntil    *time.Time       `json:"validUntil,omitempty"`
	RespondedAt   *time.Time       `json:"respondedAt,omitempty"`
	LeadID        *uuid.UUID       `json:"leadId,omitempty"`
	ConvertedAt   *time.Time       `json:"convertedAt,omitempty"`
	Notes         []NoteResponse   `json:"notes"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ToQuoteResponse maps a request to its response
func ToQuoteResponse(q *webquote.QuoteRequest) QuoteResponse {
	attachments := q.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	notes := make([]NoteResponse, len(q.Notes))
	for i, n := range q.Notes {
		notes[i] = NoteResponse{ID: n.ID, Content: n.Content, IsInternal: n.IsInternal, AuthorID: n.AuthorID, CreatedAt: n.CreatedAt}
	}
	return QuoteResponse{
		ID:            q.ID,
		QuoteNumber:   q.Number,
		Status:        string(q.Status),
		CustomerName:  q.CustomerName,
		CustomerEmail: q.CustomerEmail,
		CustomerPhone: q.CustomerPhone,
		Company:       q.Company,
		City:          q.City,
		Address:       q.Address,
		ProjectType:   q.ProjectType,
		Description:   q.Description,
		Budget:        q.Budget,
		Timeline:      q.Timeline,
		Attachments:   attachments,
		Locale:        q.Locale,
		Source:        q.Source,
		Response:      q.Response,
		QuotedPrice:   q.QuotedPrice,
		ValidUntil:    q.ValidUntil,
		RespondedAt:   q.RespondedAt,
		LeadID:        q.LeadID,
		ConvertedAt:   q.ConvertedAt,
		Notes:         notes,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// ListResponse is a page of requests with the per-status counters
type ListResponse struct {
	shared.Paginated[QuoteResponse]
	StatusCounts map[string]int64 `json:"statusCounts"`
}

// ConvertResponse reports the lead created from a request
type ConvertResponse struct {
	Quote      QuoteResponse `json:"quote"`
	LeadID     uuid.UUID     `json:"leadId"`
	LeadNumber string        `json:"leadNumber"`
}
