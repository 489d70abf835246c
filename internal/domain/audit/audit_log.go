// Package audit holds the immutable trail of business operations.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups audit entries for the financial trail
type Category string

const (
	CategoryFinancial Category = "financial"
	CategoryDocument  Category = "document"
	CategoryClient    Category = "client"
	CategorySystem    Category = "system"
)

// Severity ranks how sensitive an operation is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Actions written by the application
const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
	ActionIssue         = "issue"
	ActionLock          = "lock"
	ActionUnlock        = "unlock"
	ActionArchive       = "archive"
	ActionConvert       = "convert"
	ActionStatusChange  = "status_change"
	ActionPayment       = "payment"
	ActionPaymentDelete = "payment_delete"
	ActionCreateDeposit = "create_deposit"
	ActionApplyDeposits = "apply_deposits"
	ActionRemoveDeposit = "remove_deposits"
	ActionDelivery      = "partial_delivery"
	ActionExport        = "export"
	ActionSequenceGap   = "sequence_gap"
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionStockMove     = "stock_movement"
	ActionRefund        = "refund"
	ActionUpload        = "upload"
)

// Entities that appear in the trail
const (
	EntityDocument = "CRMDocument"
	EntityPayment  = "CRMPayment"
	EntityClient   = "CRMClient"
	EntityLead     = "CRMLead"
	EntityProject  = "CRMProject"
	EntityOrder    = "ShopOrder"
	EntityStock    = "StockMovement"
	EntitySettings = "Settings"
	EntityReport   = "Report"
	EntitySequence = "DocumentSequence"
	EntityUser     = "User"
	EntityQuote    = "QuoteRequest"
	EntityMessage  = "ContactMessage"
	EntityCurrency = "Currency"
	EntityContent  = "CMSContent"
	EntityMedia    = "Media"
)

// Change is the before/after value of one field
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Log is one audit entry. Entries are never updated.
type Log struct {
	ID             uuid.UUID
	UserID         *uuid.UUID
	UserEmail      string
	UserName       string
	Action         string
	Entity         string
	EntityID       *uuid.UUID
	Description    string
	Changes        map[string]Change
	DocumentNumber string
	DocumentType   string
	DocumentAmount *decimal.Decimal
	PdfSnapshot    string
	IPAddress      string
	UserAgent      string
	Category       Category
	Severity       Severity
	CreatedAt      time.Time
}

// New builds an entry with an ID, a timestamp and the info severity by default
func New(action, entity string, entityID *uuid.UUID, description string) *Log {
	return &Log{
		ID:          uuid.New(),
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
		Severity:    SeverityInfo,
		CreatedAt:   time.Now(),
	}
}

// WithDocument attaches the document identification
func (l *Log) WithDocument(number, docType string, amount *decimal.Decimal) *Log {
	l.DocumentNumber = number
	l.DocumentType = docType
	l.DocumentAmount = amount
	return l
}

// WithChange records one changed field
func (l *Log) WithChange(field string, old, new any) *Log {
	if l.Changes == nil {
		l.Changes = make(map[string]Change)
	}
	l.Changes[field] = Change{Old: old, New: new}
	return l
}

// Classify sets category and severity
func (l *Log) Classify(c Category, s Severity) *Log {
	l.Category = c
	l.Severity = s
	return l
}

// By sets the acting user
func (l *Log) By(userID *uuid.UUID) *Log {
	l.UserID = userID
	return l
}

// Actor is the request information attached to entries
type Actor struct {
	UserID    *uuid.UUID
	Email     string
	Name      string
	IPAddress string
	UserAgent string
}

// From copies the request actor onto the entry
func (l *Log) From(a Actor) *Log {
	if a.UserID != nil {
		l.UserID = a.UserID
	}
	l.UserEmail = a.Email
	l.UserName = a.Name
	l.IPAddress = a.IPAddress
	l.UserAgent = a.UserAgent
	return l
}

type actorKey struct{}

// ContextWithActor stores the request actor for audit writers down the call chain
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by ContextWithActor
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// StatusSeverity is critical for terminal financial statuses
func StatusSeverity(newStatus string) Severity {
	if newStatus == "PAID" || newStatus == "CANCELLED" {
		return SeverityCritical
	}
	return SeverityInfo
}

// BalanceSeverity flags balance moves above 10 000 DH
func BalanceSeverity(delta decimal.Decimal) Severity {
	if delta.Abs().GreaterThan(decimal.NewFromInt(10000)) {
		return SeverityWarning
	}
	return SeverityInfo
}

// ExportDescription formats the description of an export entry
func ExportDescription(exportType, period, format string, count int) string {
	return fmt.Sprintf("Export %s (%s): %d enregistrements en %s", exportType, period, count, strings.ToUpper(format))
}

// Filter narrows a search
type Filter struct {
	DateFrom       *time.Time
	DateTo         *time.Time
	Action         string
	Entity         string
	EntityID       *uuid.UUID
	Actions        []string
	UserID         *uuid.UUID
	Categories     []Category
	Severity       Severity
	DocumentType   string
	DocumentNumber string
	Search         string
	Limit          int
	Offset         int
}

// Repository persists audit entries
type Repository interface {
	Save(ctx context.Context, log *Log) error
	Search(ctx context.Context, filter Filter) ([]Log, int64, error)
	CountByAction(ctx context.Context, filter Filter) (map[string]int64, error)
}
