package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a client settled an amount
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCheck        PaymentMethod = "CHECK"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
	PaymentMobile       PaymentMethod = "MOBILE"
	PaymentOther        PaymentMethod = "OTHER"
)

// IsValid reports whether the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentBankTransfer, PaymentCard, PaymentMobile, PaymentOther:
		return true
	}
	return false
}

// Payment is an amount received against an invoice
type Payment struct {
	shared.BaseEntity
	Number      string
	DocumentID  uuid.UUID
	ClientID    uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time
	Method      PaymentMethod
	Reference   string
	Notes       string
	CreatedByID *uuid.UUID
}

// PaymentParams describes a payment to record
type PaymentParams struct {
	Amount      decimal.Decimal
	Date        time.Time
	Method      PaymentMethod
	Reference   string
	Notes       string
	CreatedByID *uuid.UUID
}

// NewPayment validates a payment for the given invoice. The number comes from the PAYMENT sequence.
func NewPayment(d *Document, number string, p PaymentParams) (*Payment, error) {
	var details []shared.ErrorDetail
	if !p.Amount.IsPositive() {
		details = append(details, shared.ErrorDetail{Field: "amount", Message: "Le montant doit être positif"})
	}
	if !p.Method.IsValid() {
		details = append(details, shared.ErrorDetail{Field: "method", Message: "Mode de paiement invalide"})
	}
	if p.Date.IsZero() {
		details = append(details, shared.ErrorDetail{Field: "date", Message: "Date requise"})
	}
	if len(details) > 0 {
		return nil, shared.NewValidationError("Données invalides", details...)
	}
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		Number:      number,
		DocumentID:  d.ID,
		ClientID:    d.Client.ID,
		Amount:      p.Amount.Round(2),
		Date:        p.Date,
		Method:      p.Method,
		Reference:   strings.TrimSpace(p.Reference),
		Notes:       p.Notes,
		CreatedByID: p.CreatedByID,
	}, nil
}
