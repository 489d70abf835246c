package document

import (
	"slices"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Type is the kind of commercial document
type Type string

const (
	TypeDevis          Type = "DEVIS"
	TypeBonCommande    Type = "BON_COMMANDE"
	TypeBonLivraison   Type = "BON_LIVRAISON"
	TypePVReception    Type = "PV_RECEPTION"
	TypeFacture        Type = "FACTURE"
	TypeFactureAcompte Type = "FACTURE_ACOMPTE"
	TypeAvoir          Type = "AVOIR"
)

var typeLabels = map[Type]string{
	TypeDevis:          "Devis",
	TypeBonCommande:    "Bon de commande",
	TypeBonLivraison:   "Bon de livraison",
	TypePVReception:    "PV de réception",
	TypeFacture:        "Facture",
	TypeFactureAcompte: "Facture d'acompte",
	TypeAvoir:          "Avoir",
}

// AllTypes returns every document type
func AllTypes() []Type {
	return []Type{TypeDevis, TypeBonCommande, TypeBonLivraison, TypePVReception, TypeFacture, TypeFactureAcompte, TypeAvoir}
}

// IsValid reports whether the type is known
func (t Type) IsValid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the French display name
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// SequenceType maps the document type onto its numbering family
func (t Type) SequenceType() sequence.Type {
	return sequence.Type(t)
}

// IsInvoice reports whether payments can be recorded against the type
func (t Type) IsInvoice() bool {
	return t == TypeFacture || t == TypeFactureAcompte
}

// Status is the lifecycle state of a document
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusViewed    Status = "VIEWED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusPartial   Status = "PARTIAL"
	StatusDelivered Status = "DELIVERED"
	StatusSigned    Status = "SIGNED"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusSent, StatusCancelled},
	StatusConfirmed: {StatusSent, StatusDelivered, StatusPartial, StatusCancelled},
	StatusSent:      {StatusViewed, StatusAccepted, StatusRejected, StatusDelivered, StatusSigned, StatusPartial, StatusPaid, StatusCancelled},
	StatusViewed:    {StatusAccepted, StatusRejected, StatusPaid, StatusPartial, StatusCancelled},
	StatusAccepted:  {StatusConfirmed, StatusCancelled},
	StatusRejected:  {},
	StatusPartial:   {StatusDelivered, StatusPaid, StatusCancelled},
	StatusDelivered: {StatusSigned, StatusCancelled},
	StatusSigned:    {},
	StatusPaid:      {},
	StatusOverdue:   {StatusPaid, StatusPartial, StatusCancelled},
	StatusCancelled: {},
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions lists the statuses reachable from s
func (s Status) AllowedTransitions() []Status {
	return slices.Clone(transitions[s])
}

// CanTransitionTo reports whether s may move to next
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// StatusAfterIssue is the status a document takes when it gets its official number.
// A PV stays in draft until it is signed.
func StatusAfterIssue(t Type) Status {
	switch t {
	case TypeBonCommande:
		return StatusConfirmed
	case TypeBonLivraison:
		return StatusDelivered
	case TypePVReception:
		return StatusDraft
	default:
		return StatusSent
	}
}

// DiscountType tells how the global discount value is read
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid VAT rates in Morocco
var vatRates = []int{0, 7, 10, 14, 20}

// DefaultVATRate is applied when an item does not carry a rate
const DefaultVATRate = 20

// IsValidVATRate reports whether rate is an allowed Moroccan VAT rate
func IsValidVATRate(rate int) bool {
	return slices.Contains(vatRates, rate)
}

var conversions = map[Type][]Type{
	TypeDevis:        {TypeBonCommande},
	TypeBonCommande:  {TypeBonLivraison, TypeFacture},
	TypeBonLivraison: {TypePVReception, TypeFacture},
	TypePVReception:  {TypeFacture},
	TypeFacture:      {TypeAvoir},
}

var conversionSourceStatuses = map[Type][]Status{
	TypeDevis:        {StatusAccepted},
	TypeBonCommande:  {StatusConfirmed, StatusPartial},
	TypeBonLivraison: {StatusDelivered, StatusPartial},
	TypePVReception:  {StatusSigned},
	TypeFacture:      {StatusPaid, StatusPartial, StatusOverdue},
}

// AllowedConversions lists the types a document of type t can be converted into
func AllowedConversions(t Type) []Type {
	return slices.Clone(conversions[t])
}

// CanConvert checks the conversion table and the source status requirement
func CanConvert(from Type, status Status, to Type) error {
	if !slices.Contains(conversions[from], to) {
		return shared.NewDomainErrorf(CodeConversionNotAllowed, "Impossible de convertir %s en %s", from, to)
	}
	required := conversionSourceStatuses[from]
	if len(required) > 0 && !slices.Contains(required, status) {
		names := make([]string, len(required))
		for i, s := range required {
			names[i] = string(s)
		}
		return shared.NewDomainErrorf(CodeInvalidSourceStatus,
			"Le document doit être %s pour être converti", strings.Join(names, " ou "))
	}
	return nil
}

// Error codes raised by the document context
const (
	CodeConversionNotAllowed = "CONVERSION_NOT_ALLOWED"
	CodeInvalidSourceStatus  = "INVALID_SOURCE_STATUS"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeAlreadyIssued        = "ALREADY_ISSUED"
	CodeNotInvoice           = "NOT_INVOICE"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeReasonRequired       = "REASON_REQUIRED"
	CodeNotLocked            = "NOT_LOCKED"
	CodeAlreadyLocked        = "ALREADY_LOCKED"
	CodeInvalidDeposit       = "INVALID_DEPOSIT"
	CodeInvalidDelivery      = "INVALID_DELIVERY"
	CodeNotEditable          = "NOT_EDITABLE"
)

// ErrDocumentNotFound is returned when a document id does not resolve
var ErrDocumentNotFound = shared.NotFound("Document non trouvé")
