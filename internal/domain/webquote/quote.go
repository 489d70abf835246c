// Package webquote holds quote requests sent from the public site.
package webquote

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the handling state of a quote request
type Status string

const (
	StatusNew       Status = "NEW"
	StatusInReview  Status = "IN_REVIEW"
	StatusQuoted    Status = "QUOTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusConverted Status = "CONVERTED"
)

var transitions = map[Status][]Status{
	StatusNew:      {StatusInReview, StatusQuoted, StatusRejected},
	StatusInReview: {StatusQuoted, StatusRejected},
	StatusQuoted:   {StatusAccepted, StatusRejected, StatusExpired, StatusInReview},
	StatusAccepted: {StatusConverted},
	StatusExpired:  {StatusInReview},
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusQuoted, StatusAccepted, StatusRejected, StatusExpired, StatusConverted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deletable reports whether a request in this status may be removed
func (s Status) Deletable() bool {
	return s == StatusNew || s == StatusRejected || s == StatusExpired
}

const (
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeNotDeletable      = "QUOTE_NOT_DELETABLE"
	CodeAlreadyConverted  = "QUOTE_ALREADY_CONVERTED"
)

var ErrQuoteNotFound = shared.NotFound("Demande de devis non trouvée")

// QuoteRequest is a visitor's request for a quotation
type QuoteRequest struct {
	shared.BaseAggregateRoot
	Number        string           `gorm:"column:quote_number;type:varchar(30);not null;uniqueIndex"`
	Status        Status           `gorm:"type:varchar(20);not null;default:'NEW';index"`
	CustomerName  string           `gorm:"type:varchar(200);not null"`
	CustomerEmail string           `gorm:"type:varchar(200);not null;index"`
	CustomerPhone string           `gorm:"type:varchar(50);not null"`
	Company       *string          `gorm:"type:varchar(200)"`
	City          *string          `gorm:"type:varchar(100)"`
	Address       *string          `gorm:"type:text"`
	ProjectType   *string          `gorm:"type:varchar(100)"`
	Description   string           `gorm:"type:text;not null"`
	Budget        *string          `gorm:"type:varchar(100)"`
	Timeline      *string          `gorm:"type:varchar(100)"`
	Attachments   []string         `gorm:"type:text;serializer:json"`
	Locale        string           `gorm:"type:varchar(5);not null;default:'fr'"`
	Source        string           `gorm:"type:varchar(50);not null;default:'website'"`
	IPAddress     *string          `gorm:"type:varchar(64)"`
	Response      *string          `gorm:"type:text"`
	QuotedPrice   *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ValidUntil    *time.Time
	RespondedAt   *time.Time
	LeadID        *uuid.UUID `gorm:"type:uuid"`
	ConvertedAt   *time.Time

	Notes []Note `gorm:"foreignKey:QuoteID"`
}

// TableName returns the table name for GORM
func (QuoteRequest) TableName() string {
	return "quote_requests"
}

// Note is an admin remark on a quote request
type Note struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	QuoteID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Content    string     `gorm:"type:text;not null"`
	IsInternal bool       `gorm:"not null"`
	AuthorID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Note) TableName() string {
	return "quote_request_notes"
}

// SubmitParams is a sanitised public submission
type SubmitParams struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Company       *string
	City          *string
	Address       *string
	ProjectType   *string
	Description   string
	Budget        *string
	Timeline      *string
	Attachments   []string
	Locale        string
	Source        string
	IPAddress     *string
}

func (p *SubmitParams) normalize() {
	p.CustomerName = strings.TrimSpace(p.CustomerName)
	p.CustomerEmail = strings.ToLower(strings.TrimSpace(p.CustomerEmail))
	p.CustomerPhone = strings.TrimSpace(p.CustomerPhone)
	p.Description = strings.TrimSpace(p.Description)
	if p.Locale == "" {
		p.Locale = "fr"
	}
	if p.Source == "" {
		p.Source = "website"
	}
}

func (p SubmitParams) validate() error {
	var details []shared.ErrorDetail
	if len([]rune(p.CustomerName)) < 2 {
		details = append(details, shared.ErrorDetail{Field: "customerName", Message: "Nom requis"})
	}
	if _, err := mail.ParseAddress(p.CustomerEmail); err != nil {
		details = append(details, shared.ErrorDetail{Field: "customerEmail", Message: "Email invalide"})
	}
	if len(p.CustomerPhone) < 8 {
		details = append(details, shared.ErrorDetail{Field: "customerPhone", Message: "Téléphone invalide"})
	}
	if len([]rune(p.Description)) < 10 {
		details = append(details, shared.ErrorDetail{Field: "description", Message: "Description trop courte"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// ValidateSubmission checks a submission without creating it
func ValidateSubmission(p SubmitParams) error {
	p.normalize()
	return p.validate()
}

// NewQuoteRequest validates and creates a request in status NEW
func NewQuoteRequest(number string, p SubmitParams) (*QuoteRequest, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	q := &QuoteRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Status:            StatusNew,
		CustomerName:      p.CustomerName,
		CustomerEmail:     p.CustomerEmail,
		CustomerPhone:     p.CustomerPhone,
		Company:           p.Company,
		City:              p.City,
		Address:           p.Address,
		ProjectType:       p.ProjectType,
		Description:       p.Description,
		Budget:            p.Budget,
		Timeline:          p.Timeline,
		Attachments:       p.Attachments,
		Locale:            p.Locale,
		Source:            p.Source,
		IPAddress:         p.IPAddress,
	}
	q.AddDomainEvent(NewQuoteRequestedEvent(q))
	return q, nil
}

// ReviewParams carries an admin update; nil fields are left unchanged
type ReviewParams struct {
	Status      *Status
	Response    *string
	QuotedPrice *decimal.Decimal
	ValidUntil  *time.Time
}

// Review applies an admin update and returns the previous status
func (q *QuoteRequest) Review(p ReviewParams, now time.Time) (Status, error) {
	old := q.Status
	if p.Status != nil && *p.Status != q.Status {
		next := *p.Status
		if next == StatusConverted {
			return old, shared.NewDomainError(CodeInvalidTransition, "Utilisez la conversion en prospect")
		}
		if !next.IsValid() || !q.Status.CanTransitionTo(next) {
			return old, shared.NewDomainErrorf(CodeInvalidTransition, "Transition impossible de %s vers %s", q.Status, next)
		}
		q.Status = next
		if next == StatusQuoted {
			t := now
			q.RespondedAt = &t
		}
	}
	if p.Response != nil {
		q.Response = p.Response
	}
	if p.QuotedPrice != nil {
		if p.QuotedPrice.IsNegative() {
			return old, shared.NewValidationError("Données invalides",
				shared.ErrorDetail{Field: "quotedPrice", Message: "Montant invalide"})
		}
		q.QuotedPrice = p.QuotedPrice
	}
	if p.ValidUntil != nil {
		q.ValidUntil = p.ValidUntil
	}
	q.UpdatedAt = now
	q.IncrementVersion()
	return old, nil
}

// AddNote appends a remark
func (q *QuoteRequest) AddNote(content string, internal bool, author *uuid.UUID, now time.Time) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewValidationError("Données invalides",
			shared.ErrorDetail{Field: "content", Message: "Contenu requis"})
	}
	n := Note{
		ID:         uuid.New(),
		QuoteID:    q.ID,
		Content:    content,
		IsInternal: internal,
		AuthorID:   author,
		CreatedAt:  now,
	}
	q.Notes = append(q.Notes, n)
	q.UpdatedAt = now
	q.IncrementVersion()
	return &n, nil
}

// CheckConvertible refuses converting a rejected or already converted request
func (q *QuoteRequest) CheckConvertible() error {
	if q.LeadID != nil || q.Status == StatusConverted {
		return shared.NewDomainError(CodeAlreadyConverted, "Demande déjà convertie en prospect")
	}
	if q.Status == StatusRejected {
		return shared.NewDomainError(CodeInvalidTransition, "Une demande refusée ne peut pas être convertie")
	}
	return nil
}

// MarkConverted links the lead created from this request
func (q *QuoteRequest) MarkConverted(leadID uuid.UUID, now time.Time) error {
	if err := q.CheckConvertible(); err != nil {
		return err
	}
	t := now
	q.LeadID = &leadID
	q.ConvertedAt = &t
	q.Status = StatusConverted
	q.UpdatedAt = now
	q.IncrementVersion()
	q.AddDomainEvent(NewQuoteConvertedEvent(q))
	return nil
}

// Expire moves a quoted request past its validity date to EXPIRED
func (q *QuoteRequest) Expire(now time.Time) bool {
	if q.Status != StatusQuoted || q.ValidUntil == nil || !q.ValidUntil.Before(now) {
		return false
	}
	q.Status = StatusExpired
	q.UpdatedAt = now
	q.IncrementVersion()
	return true
}

// GuardDelete refuses deleting a request that is being handled
func (q *QuoteRequest) GuardDelete() error {
	if !q.Status.Deletable() {
		return shared.NewDomainErrorf(CodeNotDeletable,
			"Can only delete quotes with status %s, %s or %s", StatusNew, StatusRejected, StatusExpired)
	}
	return nil
}

// LeadNeed summarises the request for the lead it becomes
func (q *QuoteRequest) LeadNeed() string {
	var b strings.Builder
	if q.ProjectType != nil && *q.ProjectType != "" {
		b.WriteString(*q.ProjectType)
		b.WriteString(": ")
	}
	b.WriteString(q.Description)
	return b.String()
}

// Filter narrows the admin list
type Filter struct {
	shared.Filter
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
}

// StatusCount is the number of requests per status
type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}
