package webquote

import (
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// AggregateTypeQuoteRequest names the aggregate in events
const AggregateTypeQuoteRequest = "QuoteRequest"

const (
	EventTypeQuoteRequested = "QuoteRequested"
	EventTypeQuoteConverted = "QuoteRequestConverted"
)

// QuoteRequestedEvent is published when a visitor asks for a quote
type QuoteRequestedEvent struct {
	shared.BaseDomainEvent
	QuoteID      uuid.UUID `json:"quote_id"`
	Number       string    `json:"number"`
	CustomerName string    `json:"customer_name"`
	ProjectType  *string   `json:"project_type,omitempty"`
}

// NewQuoteRequestedEvent creates a QuoteRequestedEvent
func NewQuoteRequestedEvent(q *QuoteRequest) *QuoteRequestedEvent {
	return &QuoteRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRequested, AggregateTypeQuoteRequest, q.ID),
		QuoteID:         q.ID,
		Number:          q.Number,
		CustomerName:    q.CustomerName,
		ProjectType:     q.ProjectType,
	}
}

// QuoteConvertedEvent is published when a request becomes a lead
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	QuoteID uuid.UUID `json:"quote_id"`
	Number  string    `json:"number"`
	LeadID  uuid.UUID `json:"lead_id"`
}

// NewQuoteConvertedEvent creates a QuoteConvertedEvent
func NewQuoteConvertedEvent(q *QuoteRequest) *QuoteConvertedEvent {
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, AggregateTypeQuoteRequest, q.ID),
		QuoteID:         q.ID,
		Number:          q.Number,
		LeadID:          *q.LeadID,
	}
}
