package document

import (
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeDocument names the document aggregate in events and audit entries
const AggregateTypeDocument = "CRMDocument"

// Event type constants
const (
	EventTypeDocumentCreated       = "DocumentCreated"
	EventTypeDocumentUpdated       = "DocumentUpdated"
	EventTypeDocumentDeleted       = "DocumentDeleted"
	EventTypeDocumentIssued        = "DocumentIssued"
	EventTypeDocumentStatusChanged = "DocumentStatusChanged"
	EventTypeDocumentLocked        = "DocumentLocked"
	EventTypeDocumentUnlocked      = "DocumentUnlocked"
	EventTypeDocumentConverted     = "DocumentConverted"
	EventTypePaymentRecorded       = "PaymentRecorded"
	EventTypePaymentDeleted        = "PaymentDeleted"
)

type actorAware interface {
	shared.DomainEvent
	SetActor(*uuid.UUID)
}

func withActor[E actorAware](e E, actor *uuid.UUID) E {
	e.SetActor(actor)
	return e
}

// DocumentSummary is the part of a document carried by every event
type DocumentSummary struct {
	DocumentID uuid.UUID       `json:"document_id"`
	Type       Type            `json:"type"`
	Number     string          `json:"number"`
	ClientID   uuid.UUID       `json:"client_id"`
	ClientName string          `json:"client_name"`
	TotalTTC   decimal.Decimal `json:"total_ttc"`
}

func summaryOf(d *Document) DocumentSummary {
	return DocumentSummary{
		DocumentID: d.ID,
		Type:       d.Type,
		Number:     d.Number,
		ClientID:   d.Client.ID,
		ClientName: d.Client.Name,
		TotalTTC:   d.TotalTTC,
	}
}

// DocumentCreatedEvent is published when a document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// NewDocumentCreatedEvent creates a DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		ParentID:        d.ParentID,
	}
}

// DocumentUpdatedEvent is published when a draft is edited
type DocumentUpdatedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
}

// NewDocumentUpdatedEvent creates a DocumentUpdatedEvent
func NewDocumentUpdatedEvent(d *Document) *DocumentUpdatedEvent {
	return &DocumentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentUpdated, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
	}
}

// DocumentDeletedEvent is published when a draft is deleted
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
}

// NewDocumentDeletedEvent creates a DocumentDeletedEvent
func NewDocumentDeletedEvent(d *Document) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
	}
}

// DocumentIssuedEvent is published when a draft receives its official number
type DocumentIssuedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	PreviousNumber string `json:"previous_number"`
	OldStatus      Status `json:"old_status"`
	NewStatus      Status `json:"new_status"`
	Hash           string `json:"hash"`
}

// NewDocumentIssuedEvent creates a DocumentIssuedEvent
func NewDocumentIssuedEvent(d *Document, previous string, oldStatus Status) *DocumentIssuedEvent {
	return &DocumentIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentIssued, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		PreviousNumber:  previous,
		OldStatus:       oldStatus,
		NewStatus:       d.Status,
		Hash:            d.Archive.DocumentHash,
	}
}

// DocumentStatusChangedEvent is published on every status change
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

// NewDocumentStatusChangedEvent creates a DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(d *Document, from, to Status, reason string) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		OldStatus:       from,
		NewStatus:       to,
		Reason:          reason,
	}
}

// DocumentLockedEvent is published when a document is locked and archived
type DocumentLockedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	Hash   string `json:"hash"`
	PdfURL string `json:"pdf_url,omitempty"`
}

// NewDocumentLockedEvent creates a DocumentLockedEvent
func NewDocumentLockedEvent(d *Document) *DocumentLockedEvent {
	return &DocumentLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentLocked, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		Hash:            d.Archive.DocumentHash,
		PdfURL:          d.Archive.PdfURL,
	}
}

// DocumentUnlockedEvent is published when an administrator unlocks a document
type DocumentUnlockedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	Reason string `json:"reason"`
}

// NewDocumentUnlockedEvent creates a DocumentUnlockedEvent
func NewDocumentUnlockedEvent(d *Document, reason string) *DocumentUnlockedEvent {
	return &DocumentUnlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentUnlocked, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		Reason:          reason,
	}
}

// DocumentConvertedEvent is published on the source when a child document is derived from it
type DocumentConvertedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	TargetID   uuid.UUID `json:"target_id"`
	TargetType Type      `json:"target_type"`
	Partial    bool      `json:"partial"`
}

// NewDocumentConvertedEvent creates a DocumentConvertedEvent
func NewDocumentConvertedEvent(source, target *Document, partial bool) *DocumentConvertedEvent {
	return &DocumentConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentConverted, AggregateTypeDocument, source.ID),
		DocumentSummary: summaryOf(source),
		TargetID:        target.ID,
		TargetType:      target.Type,
		Partial:         partial,
	}
}

// PaymentRecordedEvent is published when a payment is applied to an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Balance       decimal.Decimal `json:"balance"`
	Status        Status          `json:"status"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(d *Document, p *Payment) *PaymentRecordedEvent {
	e := &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		PaymentID:       p.ID,
		PaymentNumber:   p.Number,
		Amount:          p.Amount,
		Method:          p.Method,
		Balance:         d.Balance,
		Status:          d.Status,
	}
	e.SetActor(p.CreatedByID)
	return e
}

// PaymentDeletedEvent is published when a payment is removed
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	DocumentSummary
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
}

// NewPaymentDeletedEvent creates a PaymentDeletedEvent
func NewPaymentDeletedEvent(d *Document, p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypeDocument, d.ID),
		DocumentSummary: summaryOf(d),
		PaymentID:       p.ID,
		PaymentNumber:   p.Number,
		Amount:          p.Amount,
		Balance:         d.Balance,
	}
}
