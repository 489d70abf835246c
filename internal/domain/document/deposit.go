package document

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultDepositPercent applies when neither the request nor the devis sets a share
var DefaultDepositPercent = decimal.NewFromInt(30)

// DepositParams describes a deposit invoice to raise on a devis
type DepositParams struct {
	// Percent and Amount are exclusive, Amount wins when both are set
	Percent     decimal.Decimal
	Amount      decimal.Decimal
	DueDate     *time.Time
	Notes       string
	CreatedByID *uuid.UUID
	Now         time.Time
}

// NewDepositInvoice raises a facture d'acompte on an accepted devis. existing
// lists the deposit invoices already raised on the devis; the cumulated
// deposits cannot exceed the devis TTC. One line is created per VAT rate of
// the devis so the deposit carries the same VAT split.
func (d *Document) NewDepositInvoice(existing []*Document, p DepositParams) (*Document, error) {
	if d.Type != TypeDevis {
		return nil, shared.NewDomainError(CodeInvalidDeposit, "La facture d'acompte ne peut être créée qu'à partir d'un devis")
	}
	if d.Status != StatusAccepted {
		return nil, shared.NewDomainError(CodeInvalidDeposit, "Le devis doit être accepté pour créer une facture d'acompte")
	}
	if !d.TotalTTC.IsPositive() {
		return nil, shared.NewDomainError(CodeInvalidDeposit, "Le montant du devis doit être positif")
	}
	if p.Percent.IsNegative() || p.Percent.GreaterThan(hundred) {
		return nil, shared.NewDomainError(CodeInvalidDeposit, "Le pourcentage d'acompte doit être compris entre 1 et 100")
	}
	if p.Amount.IsNegative() {
		return nil, shared.NewDomainError(CodeInvalidDeposit, "Le montant de l'acompte doit être positif")
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	var amount decimal.Decimal
	switch {
	case p.Amount.IsPositive():
		amount = p.Amount
	case p.Percent.IsPositive():
		amount = d.TotalTTC.Mul(p.Percent).Div(hundred)
	case d.Deposit.Percent.IsPositive():
		amount = d.TotalTTC.Mul(d.Deposit.Percent).Div(hundred)
	default:
		amount = d.TotalTTC.Mul(DefaultDepositPercent).Div(hundred)
	}
	amount = round2(amount)

	already := decimal.Zero
	for _, dep := range existing {
		if dep.Status != StatusCancelled {
			already = already.Add(dep.TotalTTC)
		}
	}
	if already.Add(amount).GreaterThan(d.TotalTTC) {
		return nil, shared.NewDomainErrorf(CodeInvalidDeposit,
			"Le montant de l'acompte dépasse le solde restant. Maximum autorisé: %s DH",
			d.TotalTTC.Sub(already).StringFixed(2))
	}

	ratio := amount.Div(d.TotalTTC)
	percentLabel := ratio.Mul(hundred).Round(0).String()
	breakdown := d.VATBreakdown
	if len(breakdown) == 0 {
		breakdown = CalculateTotals(d.lineInputs(), d.DiscountType, d.DiscountValue).VATBreakdown
	}
	items := make([]Item, 0, len(breakdown))
	for _, entry := range breakdown {
		designation := "Acompte sur devis " + d.Number
		if len(breakdown) > 1 {
			designation += fmt.Sprintf(" (TVA %d%%)", entry.Rate)
		}
		items = append(items, Item{
			ID:          uuid.New(),
			Designation: designation,
			Description: fmt.Sprintf("Acompte de %s%% sur le montant total TTC de %s DH", percentLabel, d.TotalTTC.StringFixed(2)),
			Quantity:    decimal.NewFromInt(1),
			Unit:        "forfait",
			UnitPriceHT: round2(entry.BaseHT.Mul(ratio)),
			TVARate:     entry.Rate,
			Position:    len(items),
		})
	}

	inv := d.child(TypeFactureAcompte, items, p.CreatedByID, now)
	inv.DiscountType = ""
	inv.DiscountValue = decimal.Zero
	inv.DueDate = p.DueDate
	linked := d.ID
	inv.Deposit = Deposit{
		Percent:          p.Percent,
		Amount:           amount,
		IsDepositInvoice: true,
		LinkedDevisID:    &linked,
	}
	inv.Terms.PublicNotes = p.Notes
	if inv.Terms.PublicNotes == "" {
		inv.Terms.PublicNotes = fmt.Sprintf("Acompte de %s%% sur devis %s", percentLabel, d.Number)
	}
	inv.Terms.FooterText = fmt.Sprintf("Acompte sur devis %s - Montant total du devis: %s DH", d.Number, d.TotalTTC.StringFixed(2))
	inv.Recalculate()
	inv.AddDomainEvent(withActor(NewDocumentCreatedEvent(inv), p.CreatedByID))
	return inv, nil
}

func (d *Document) lineInputs() []LineInput {
	in := make([]LineInput, len(d.Items))
	for i, it := range d.Items {
		in[i] = it.lineInput()
	}
	return in
}

// FinalInvoiceParams describes the closing invoice of a BC, BL or PV
type FinalInvoiceParams struct {
	DueDate     *time.Time
	Notes       string
	CreatedByID *uuid.UUID
	Now         time.Time
}

var finalInvoiceSourceStatuses = map[Type][]Status{
	TypeBonCommande:  {StatusConfirmed, StatusPartial, StatusDelivered},
	TypeBonLivraison: {StatusDelivered},
	TypePVReception:  {StatusSigned},
}

// NewFinalInvoice builds the draft facture closing a BC, BL or PV. Deposits
// are applied afterwards with ApplyDeposits.
func (d *Document) NewFinalInvoice(p FinalInvoiceParams) (*Document, error) {
	required, ok := finalInvoiceSourceStatuses[d.Type]
	if !ok {
		return nil, shared.NewDomainError(CodeConversionNotAllowed, "La facture finale ne peut être créée qu'à partir d'un BC, BL ou PV")
	}
	if !slices.Contains(required, d.Status) {
		names := make([]string, len(required))
		for i, s := range required {
			names[i] = string(s)
		}
		return nil, shared.NewDomainErrorf(CodeInvalidSourceStatus,
			"Le document doit être %s pour créer une facture", strings.Join(names, " ou "))
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = it.copyFor(it.Quantity, i)
	}
	inv := d.child(TypeFacture, items, p.CreatedByID, now)
	inv.DueDate = p.DueDate
	inv.Terms.PublicNotes = p.Notes
	inv.Recalculate()
	inv.AddDomainEvent(withActor(NewDocumentCreatedEvent(inv), p.CreatedByID))

	if d.Type == TypeBonCommande {
		d.Status = StatusDelivered
	}
	d.ChildType = TypeFacture
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentConvertedEvent(d, inv, false), p.CreatedByID))
	return inv, nil
}

func (d *Document) guardDepositEdit() error {
	if d.Type != TypeFacture {
		return shared.NewDomainError(CodeInvalidDeposit, "Les acomptes ne peuvent être appliqués qu'à une facture")
	}
	if d.IsLocked || !d.IsDraft {
		return shared.NewDomainErrorf(shared.CodeDocumentLocked,
			"La facture %s est verrouillée et ne peut pas être modifiée", d.Number)
	}
	return nil
}

// ApplyDeposits deducts paid deposit invoices of devisID from a draft final
// invoice. Deposits already applied to the invoice are kept; repeated ones
// are counted once.
func (d *Document) ApplyDeposits(devisID uuid.UUID, deposits []*Document, now time.Time) error {
	if err := d.guardDepositEdit(); err != nil {
		return err
	}
	var invalid, foreign []string
	for _, dep := range deposits {
		paid := dep.Status == StatusPaid || dep.Status == StatusPartial
		if dep.Type != TypeFactureAcompte || !paid {
			invalid = append(invalid, dep.ID.String())
			continue
		}
		if dep.Deposit.AppliedToInvoiceID != nil && *dep.Deposit.AppliedToInvoiceID != d.ID {
			invalid = append(invalid, dep.ID.String())
			continue
		}
		linked := dep.Deposit.LinkedDevisID
		if linked == nil || *linked != devisID || dep.Client.ID != d.Client.ID {
			foreign = append(foreign, dep.ID.String())
		}
	}
	if len(invalid) > 0 {
		return shared.NewDomainErrorf(CodeInvalidDeposit,
			"Factures d'acompte invalides ou non payées: %s", strings.Join(invalid, ", "))
	}
	if len(foreign) > 0 {
		return shared.NewDomainErrorf(CodeInvalidDeposit,
			"Factures d'acompte étrangères au devis ou au client de la facture: %s", strings.Join(foreign, ", "))
	}

	applied := make(map[uuid.UUID]struct{}, len(d.Deposit.AppliedDepositIDs)+len(deposits))
	for _, id := range d.Deposit.AppliedDepositIDs {
		applied[id] = struct{}{}
	}
	ids := append([]uuid.UUID(nil), d.Deposit.AppliedDepositIDs...)
	total := d.Deposit.TotalApplied
	for _, dep := range deposits {
		if _, ok := applied[dep.ID]; ok {
			continue
		}
		applied[dep.ID] = struct{}{}
		total = total.Add(dep.PaidAmount)
		ids = append(ids, dep.ID)
		inv := d.ID
		dep.Deposit.AppliedToInvoiceID = &inv
		dep.UpdatedAt = now
	}
	d.Deposit.AppliedDepositIDs = ids
	d.Deposit.TotalApplied = total
	d.refreshBalance()
	if total.IsPositive() {
		d.Terms.FooterText = fmt.Sprintf("Montant total TTC: %s DH\nAcomptes déduits: %s DH\nNet à payer: %s DH",
			d.TotalTTC.StringFixed(2), total.StringFixed(2), d.Deposit.AmountDue.StringFixed(2))
	}
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

// RemoveDeposits detaches every applied deposit from a draft final invoice
func (d *Document) RemoveDeposits(deposits []*Document, now time.Time) error {
	if err := d.guardDepositEdit(); err != nil {
		return err
	}
	for _, dep := range deposits {
		if dep.Deposit.AppliedToInvoiceID != nil && *dep.Deposit.AppliedToInvoiceID == d.ID {
			dep.Deposit.AppliedToInvoiceID = nil
			dep.UpdatedAt = now
		}
	}
	d.Deposit.AppliedDepositIDs = nil
	d.Deposit.TotalApplied = decimal.Zero
	d.Terms.FooterText = ""
	d.refreshBalance()
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

// DepositLine describes one deposit invoice in a summary
type DepositLine struct {
	ID                 uuid.UUID       `json:"id"`
	Number             string          `json:"number"`
	Status             Status          `json:"status"`
	TotalTTC           decimal.Decimal `json:"totalTTC"`
	PaidAmount         decimal.Decimal `json:"paidAmount"`
	IsApplied          bool            `json:"isApplied"`
	AppliedToInvoiceID *uuid.UUID      `json:"appliedToInvoiceId,omitempty"`
}

// DepositSummary is the deposit position of a devis
type DepositSummary struct {
	DevisID                uuid.UUID       `json:"devisId"`
	DevisNumber            string          `json:"devisNumber"`
	DevisTotalTTC          decimal.Decimal `json:"devisTotalTTC"`
	TotalDepositsIssued    decimal.Decimal `json:"totalDepositsIssued"`
	TotalDepositsPaid      decimal.Decimal `json:"totalDepositsPaid"`
	RemainingAfterDeposits decimal.Decimal `json:"remainingAfterDeposits"`
	Deposits               []DepositLine   `json:"deposits"`
}

// SummarizeDeposits reports the deposit invoices raised on a devis
func SummarizeDeposits(devis *Document, deposits []*Document) DepositSummary {
	s := DepositSummary{
		DevisID:             devis.ID,
		DevisNumber:         devis.Number,
		DevisTotalTTC:       devis.TotalTTC,
		TotalDepositsIssued: decimal.Zero,
		TotalDepositsPaid:   decimal.Zero,
		Deposits:            make([]DepositLine, 0, len(deposits)),
	}
	for _, dep := range deposits {
		s.TotalDepositsIssued = s.TotalDepositsIssued.Add(dep.TotalTTC)
		s.TotalDepositsPaid = s.TotalDepositsPaid.Add(dep.PaidAmount)
		s.Deposits = append(s.Deposits, DepositLine{
			ID:                 dep.ID,
			Number:             dep.Number,
			Status:             dep.Status,
			TotalTTC:           dep.TotalTTC,
			PaidAmount:         dep.PaidAmount,
			IsApplied:          dep.Deposit.AppliedToInvoiceID != nil,
			AppliedToInvoiceID: dep.Deposit.AppliedToInvoiceID,
		})
	}
	s.RemainingAfterDeposits = devis.TotalTTC.Sub(s.TotalDepositsPaid)
	return s
}
