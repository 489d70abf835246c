package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientSnapshot is the client as printed on the document at creation time
type ClientSnapshot struct {
	ID      uuid.UUID
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	ICE     string
}

// References chain a document back to the documents it came from
type References struct {
	DevisRef   string
	BCRef      string
	BLRef      string
	PVRef      string
	FactureRef string
}

// Delivery holds where and when goods are delivered
type Delivery struct {
	Date    *time.Time
	Address string
	City    string
	Notes   string
}

// Terms are the commercial conditions printed on quotes and invoices
type Terms struct {
	DeliveryTime  string
	Includes      []string
	Excludes      []string
	Conditions    string
	PaymentTerms  string
	InternalNotes string
	PublicNotes   string
	FooterText    string
}

// Reception holds the PV de réception details
type Reception struct {
	Date            *time.Time
	SignedBy        string
	WorkDescription string
	HasReserves     bool
	Reserves        string
	ReceivedBy      string
}

// Deposit groups the down-payment fields. On a devis Percent is the default
// share asked as deposit; on a final invoice AppliedDepositIDs and
// TotalApplied record the deducted deposit invoices.
type Deposit struct {
	Percent            decimal.Decimal
	Amount             decimal.Decimal
	IsDepositInvoice   bool
	LinkedDevisID      *uuid.UUID
	AppliedToInvoiceID *uuid.UUID
	AppliedDepositIDs  []uuid.UUID
	TotalApplied       decimal.Decimal
	AmountDue          decimal.Decimal
}

// Archive is the integrity record written when a document is issued or locked
type Archive struct {
	DocumentHash string
	PdfHash      string
	PdfURL       string
	ArchivedAt   *time.Time
}

// Document is a CRM commercial document: devis, bon de commande, bon de
// livraison, PV de réception, facture, facture d'acompte or avoir.
type Document struct {
	shared.BaseAggregateRoot
	Type        Type
	Number      string
	DraftNumber string
	IsDraft     bool
	IsLocked    bool
	Status      Status

	Client    ClientSnapshot
	ProjectID *uuid.UUID
	ParentID  *uuid.UUID
	Refs      References

	Date       time.Time
	DueDate    *time.Time
	ValidUntil *time.Time
	Delivery   Delivery

	DiscountType  DiscountType
	DiscountValue decimal.Decimal

	SubtotalHT     decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalHT        decimal.Decimal
	TotalTVA       decimal.Decimal
	TotalTTC       decimal.Decimal
	PaidAmount     decimal.Decimal
	Balance        decimal.Decimal
	VATBreakdown   []VATBreakdownEntry

	Deposit   Deposit
	Terms     Terms
	Reception Reception

	AvoirReason        string
	SentAt             *time.Time
	ConfirmedAt        *time.Time
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancellationReason string

	IssuedAt    *time.Time
	IssuedByID  *uuid.UUID
	Archive     Archive
	CreatedByID *uuid.UUID

	Items []Item

	// Counters kept on the row so edit guards need no extra queries
	PaymentCount int64
	ChildType    Type
}

// Content is the editable part of a document
type Content struct {
	Client        ClientSnapshot
	ProjectID     *uuid.UUID
	Date          time.Time
	DueDate       *time.Time
	ValidUntil    *time.Time
	Delivery      Delivery
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	// DepositPercent is the default deposit share asked on a devis
	DepositPercent decimal.Decimal
	Terms          Terms
	Reception      Reception
	AvoirReason    string
	Items          []ItemInput
}

// NewParams describes a document to create
type NewParams struct {
	Type Type
	Content
	ParentID    *uuid.UUID
	Refs        References
	CreatedByID *uuid.UUID
	Now         time.Time
}

// New creates a draft document with a temporary number
func New(p NewParams) (*Document, error) {
	if !p.Type.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_TYPE", "Type de document invalide : %s", p.Type)
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	d := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              p.Type,
		Number:            sequence.DraftNumber(p.Type.SequenceType(), now),
		IsDraft:           true,
		Status:            StatusDraft,
		ParentID:          p.ParentID,
		Refs:              p.Refs,
		PaidAmount:        decimal.Zero,
		CreatedByID:       p.CreatedByID,
	}
	d.CreatedAt, d.UpdatedAt = now, now
	if err := d.apply(p.Content, now); err != nil {
		return nil, err
	}
	d.AddDomainEvent(withActor(NewDocumentCreatedEvent(d), p.CreatedByID))
	return d, nil
}

func (d *Document) apply(c Content, now time.Time) error {
	var details []shared.ErrorDetail
	if c.Client.ID == uuid.Nil {
		details = append(details, shared.ErrorDetail{Field: "clientId", Message: "Client requis"})
	}
	if c.DiscountValue.IsNegative() {
		details = append(details, shared.ErrorDetail{Field: "discountValue", Message: "La remise ne peut pas être négative"})
	}
	if !c.DiscountValue.IsZero() && c.DiscountType != DiscountPercentage && c.DiscountType != DiscountFixed {
		details = append(details, shared.ErrorDetail{Field: "discountType", Message: "Type de remise invalide"})
	}
	if c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(hundred) {
		details = append(details, shared.ErrorDetail{Field: "discountValue", Message: "La remise doit être comprise entre 0 et 100"})
	}
	if c.DepositPercent.IsNegative() || c.DepositPercent.GreaterThan(hundred) {
		details = append(details, shared.ErrorDetail{Field: "depositPercent", Message: "Le pourcentage d'acompte doit être compris entre 0 et 100"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	items, err := NewItems(c.Items)
	if err != nil {
		return err
	}
	if c.DiscountType == DiscountFixed && c.DiscountValue.IsPositive() {
		inputs := make([]LineInput, len(items))
		for i := range items {
			inputs[i] = items[i].lineInput()
		}
		if net := CalculateTotals(inputs, "", decimal.Zero).NetHT; c.DiscountValue.GreaterThan(net) {
			return shared.NewValidationError("Données invalides", shared.ErrorDetail{
				Field:   "discountValue",
				Message: fmt.Sprintf("La remise ne peut pas dépasser le montant HT (%s DH)", net.StringFixed(2)),
			})
		}
	}

	d.Client = c.Client
	d.ProjectID = c.ProjectID
	d.Date = c.Date
	if d.Date.IsZero() {
		d.Date = now
	}
	d.DueDate = c.DueDate
	d.ValidUntil = c.ValidUntil
	d.Delivery = c.Delivery
	d.DiscountType = c.DiscountType
	d.DiscountValue = c.DiscountValue
	d.Deposit.Percent = c.DepositPercent
	d.Terms = c.Terms
	d.Reception = c.Reception
	d.AvoirReason = c.AvoirReason
	d.Items = items
	d.Recalculate()
	return nil
}

// Recalculate prices every line and refreshes totals, deposit amount and balance
func (d *Document) Recalculate() {
	inputs := make([]LineInput, len(d.Items))
	for i := range d.Items {
		d.Items[i].Position = i
		inputs[i] = d.Items[i].lineInput()
	}
	calc := CalculateTotals(inputs, d.DiscountType, d.DiscountValue)
	for i := range d.Items {
		line := calc.Lines[i]
		d.Items[i].DiscountAmount = line.DiscountAmount
		d.Items[i].TotalHT = line.NetHT
		d.Items[i].TotalTVA = line.TVAAmount
		d.Items[i].TotalTTC = line.TotalTTC
	}
	d.SubtotalHT = calc.NetHT
	d.DiscountAmount = calc.GlobalDiscountAmount
	d.TotalHT = calc.TaxableHT
	d.TotalTVA = calc.TotalVAT
	d.TotalTTC = calc.TotalTTC
	d.VATBreakdown = calc.VATBreakdown
	if d.Deposit.Percent.IsPositive() && !d.Deposit.IsDepositInvoice {
		d.Deposit.Amount = round2(d.TotalTTC.Mul(d.Deposit.Percent).Div(hundred))
	}
	d.refreshBalance()
}

// refreshBalance keeps paidAmount + balance = totalTTC, or with deposits applied
// amountDue = max(0, TTC - deposits - paid).
func (d *Document) refreshBalance() {
	if d.Deposit.TotalApplied.IsPositive() {
		due := d.TotalTTC.Sub(d.Deposit.TotalApplied).Sub(d.PaidAmount)
		d.Deposit.AmountDue = decimal.Max(decimal.Zero, due)
		d.Balance = d.Deposit.AmountDue
		return
	}
	d.Balance = d.TotalTTC.Sub(d.PaidAmount)
	d.Deposit.AmountDue = decimal.Max(decimal.Zero, d.Balance)
}

// EditCheck tells whether a document can still be modified and why not
type EditCheck struct {
	CanEdit bool   `json:"canEdit"`
	Reason  string `json:"reason,omitempty"`
}

// CanEdit reports whether the document content may change
func (d *Document) CanEdit() EditCheck {
	switch {
	case d.IsLocked:
		return EditCheck{Reason: "Ce document a été émis et verrouillé. Il ne peut plus être modifié."}
	case !d.IsDraft:
		return EditCheck{Reason: "Ce document a un numéro officiel et ne peut plus être modifié."}
	case d.PaymentCount > 0:
		return EditCheck{Reason: "Ce document a des paiements enregistrés et ne peut plus être modifié."}
	case d.ChildType != "":
		return EditCheck{Reason: fmt.Sprintf("Ce document a été converti en %s et ne peut plus être modifié.", d.ChildType)}
	}
	return EditCheck{CanEdit: true}
}

// GuardEdit returns a DOCUMENT_LOCKED error when the document cannot be edited
func (d *Document) GuardEdit() error {
	if c := d.CanEdit(); !c.CanEdit {
		return shared.NewDomainError(shared.CodeDocumentLocked, c.Reason)
	}
	return nil
}

// GuardDelete allows deletion of editable drafts only
func (d *Document) GuardDelete() error {
	if err := d.GuardEdit(); err != nil {
		return err
	}
	if d.Status != StatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Impossible de supprimer le document %s avec le statut %s", d.Number, d.Status)
	}
	return nil
}

// Update replaces the editable content of a draft
func (d *Document) Update(c Content, actor *uuid.UUID, now time.Time) error {
	if err := d.GuardEdit(); err != nil {
		return err
	}
	if err := d.apply(c, now); err != nil {
		return err
	}
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentUpdatedEvent(d), actor))
	return nil
}

// MarkDeleted records the deletion event once the guard passed
func (d *Document) MarkDeleted(actor *uuid.UUID) error {
	if err := d.GuardDelete(); err != nil {
		return err
	}
	d.AddDomainEvent(withActor(NewDocumentDeletedEvent(d), actor))
	return nil
}

// LockStatus summarises what can be done with a document
type LockStatus struct {
	IsLocked   bool       `json:"isLocked"`
	IsDraft    bool       `json:"isDraft"`
	IssuedAt   *time.Time `json:"issuedAt"`
	IssuedByID *uuid.UUID `json:"issuedById"`
	CanEdit    bool       `json:"canEdit"`
	CanDelete  bool       `json:"canDelete"`
	CanIssue   bool       `json:"canIssue"`
}

// LockStatus returns the current lock state
func (d *Document) LockStatus() LockStatus {
	editable := !d.IsLocked && d.IsDraft
	return LockStatus{
		IsLocked:   d.IsLocked,
		IsDraft:    d.IsDraft,
		IssuedAt:   d.IssuedAt,
		IssuedByID: d.IssuedByID,
		CanEdit:    editable,
		CanDelete:  editable,
		CanIssue:   editable && d.Status == StatusDraft,
	}
}

// CheckIssuable runs the issue guards without changing the document
func (d *Document) CheckIssuable() error {
	if d.IsLocked || !d.IsDraft {
		return shared.NewDomainErrorf(CodeAlreadyIssued, "Le document %s a déjà été émis.", d.Number)
	}
	if d.Status != StatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Le document doit être en brouillon pour être émis. Statut actuel : %s", d.Status)
	}
	if d.Client.ID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Client requis pour émettre le document")
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Le document doit contenir au moins un article pour être émis")
	}
	return nil
}

// Issue gives the document its official number, locks it and seals its content hash
func (d *Document) Issue(number string, actor *uuid.UUID, at time.Time) error {
	if err := d.CheckIssuable(); err != nil {
		return err
	}
	previous := d.Number
	oldStatus := d.Status
	d.markIssued(number, actor, at)
	d.Status = StatusAfterIssue(d.Type)
	if d.Status == StatusSent {
		d.SentAt = &at
	}
	if d.Status == StatusConfirmed {
		d.ConfirmedAt = &at
	}
	d.AddDomainEvent(withActor(NewDocumentIssuedEvent(d, previous, oldStatus), actor))
	return nil
}

func (d *Document) markIssued(number string, actor *uuid.UUID, at time.Time) {
	d.DraftNumber = d.Number
	d.Number = number
	d.IsDraft = false
	d.IsLocked = true
	d.IssuedAt = &at
	d.IssuedByID = actor
	d.Archive.DocumentHash = d.ComputeHash()
	d.UpdatedAt = at
	d.IncrementVersion()
}

// StatusChange is a requested move in the status machine
type StatusChange struct {
	To     Status
	Reason string
	// OfficialNumber is required when confirming a draft, see NeedsNumberFor
	OfficialNumber string
	Actor          *uuid.UUID
	At             time.Time
}

// NeedsNumberFor reports whether moving to status requires an official number first
func (d *Document) NeedsNumberFor(to Status) bool {
	return to == StatusConfirmed && sequence.IsDraftNumber(d.Number)
}

// ChangeStatus moves the document through the transition table
func (d *Document) ChangeStatus(c StatusChange) error {
	from := d.Status
	if !from.CanTransitionTo(c.To) {
		allowed := from.AllowedTransitions()
		names := make([]string, len(allowed))
		for i, s := range allowed {
			names[i] = string(s)
		}
		list := strings.Join(names, ", ")
		if list == "" {
			list = "aucune"
		}
		return shared.NewDomainErrorf(CodeInvalidTransition,
			"Transition invalide : %s → %s. Transitions possibles : %s", from, c.To, list)
	}

	if c.To == StatusConfirmed {
		var details []shared.ErrorDetail
		if d.Client.ID == uuid.Nil {
			details = append(details, shared.ErrorDetail{Field: "clientId", Message: "Client requis"})
		}
		if len(d.Items) == 0 {
			details = append(details, shared.ErrorDetail{Field: "items", Message: "Au moins un article requis"})
		}
		if d.Date.IsZero() {
			details = append(details, shared.ErrorDetail{Field: "date", Message: "Date requise"})
		}
		if len(details) > 0 {
			return shared.NewValidationError("Validation échouée", details...)
		}
	}
	if c.To == StatusCancelled && from != StatusDraft && strings.TrimSpace(c.Reason) == "" {
		return shared.NewDomainError(CodeReasonRequired, "Motif d'annulation requis")
	}

	at := c.At
	if at.IsZero() {
		at = time.Now()
	}
	switch c.To {
	case StatusConfirmed:
		d.ConfirmedAt = &at
		if d.NeedsNumberFor(c.To) {
			if c.OfficialNumber == "" {
				return shared.NewDomainError(shared.CodeInvalidState, "Numéro officiel requis pour confirmer le document")
			}
			d.markIssued(c.OfficialNumber, c.Actor, at)
		}
	case StatusSent:
		d.SentAt = &at
	case StatusPaid:
		d.PaidAt = &at
		d.Balance = decimal.Zero
		d.Deposit.AmountDue = decimal.Zero
	case StatusCancelled:
		d.CancelledAt = &at
		d.CancellationReason = strings.TrimSpace(c.Reason)
	}
	d.Status = c.To
	d.UpdatedAt = at
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentStatusChangedEvent(d, from, c.To, c.Reason), c.Actor))
	return nil
}

// MarkOverdue flags an unpaid invoice whose due date has passed
func (d *Document) MarkOverdue(now time.Time) bool {
	if !d.Type.IsInvoice() || d.DueDate == nil || !d.DueDate.Before(now) {
		return false
	}
	if d.Status != StatusSent && d.Status != StatusPartial {
		return false
	}
	from := d.Status
	d.Status = StatusOverdue
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, from, StatusOverdue, ""))
	return true
}

// Lock seals an unlocked document and records its archived PDF, if any
func (d *Document) Lock(pdfURL, pdfHash string, actor *uuid.UUID, at time.Time) error {
	if d.IsLocked {
		return shared.NewDomainError(CodeAlreadyLocked, "Document déjà verrouillé")
	}
	d.IsLocked = true
	d.Archive.DocumentHash = d.ComputeHash()
	d.recordArchive(pdfURL, pdfHash, at)
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentLockedEvent(d), actor))
	return nil
}

// AttachArchive records the rendered PDF of an issued document
func (d *Document) AttachArchive(pdfURL, pdfHash string, at time.Time) {
	d.recordArchive(pdfURL, pdfHash, at)
}

func (d *Document) recordArchive(pdfURL, pdfHash string, at time.Time) {
	if pdfURL != "" {
		d.Archive.PdfURL = pdfURL
	}
	if pdfHash != "" {
		d.Archive.PdfHash = pdfHash
	}
	d.Archive.ArchivedAt = &at
	d.UpdatedAt = at
}

// Unlock reopens a locked document. Reserved to administrators and audited as critical.
func (d *Document) Unlock(reason string, actor *uuid.UUID, at time.Time) error {
	if !d.IsLocked {
		return shared.NewDomainErrorf(CodeNotLocked, "Le document %s n'est pas verrouillé.", d.Number)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(CodeReasonRequired, "Motif de déverrouillage requis")
	}
	d.IsLocked = false
	d.UpdatedAt = at
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentUnlockedEvent(d, reason), actor))
	return nil
}

// ApplyPayment adds a received amount to an invoice and settles its status
func (d *Document) ApplyPayment(p *Payment, at time.Time) error {
	if !d.Type.IsInvoice() {
		return shared.NewDomainError(CodeNotInvoice, "Seules les factures peuvent recevoir des paiements")
	}
	if d.Status == StatusCancelled || d.Status == StatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Impossible d'enregistrer un paiement sur un document au statut %s", d.Status)
	}
	if !p.Amount.IsPositive() {
		return shared.NewDomainError(CodeInvalidAmount, "Le montant doit être positif")
	}
	if p.Amount.GreaterThan(d.Balance) {
		return shared.NewDomainErrorf(CodeInvalidAmount,
			"Le montant (%s) dépasse le solde restant (%s)", p.Amount, d.Balance)
	}
	d.PaidAmount = d.PaidAmount.Add(p.Amount)
	d.refreshBalance()
	if !d.Balance.IsPositive() {
		d.Status = StatusPaid
		d.PaidAt = &at
	} else {
		d.Status = StatusPartial
	}
	d.PaymentCount++
	d.UpdatedAt = at
	d.IncrementVersion()
	d.AddDomainEvent(NewPaymentRecordedEvent(d, p))
	return nil
}

// ReversePayment removes a deleted payment from the invoice balance
func (d *Document) ReversePayment(p *Payment, at time.Time) error {
	if p.DocumentID != d.ID {
		return shared.NewDomainError(shared.CodeInvalidState, "Paiement non associé à ce document")
	}
	d.PaidAmount = decimal.Max(decimal.Zero, d.PaidAmount.Sub(p.Amount))
	d.refreshBalance()
	if d.PaidAmount.IsZero() {
		d.Status = StatusSent
		d.PaidAt = nil
	} else {
		d.Status = StatusPartial
		d.PaidAt = nil
	}
	if d.PaymentCount > 0 {
		d.PaymentCount--
	}
	d.UpdatedAt = at
	d.IncrementVersion()
	d.AddDomainEvent(NewPaymentDeletedEvent(d, p))
	return nil
}
