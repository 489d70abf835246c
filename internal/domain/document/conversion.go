package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ConvertLine selects a source line and the quantity to carry over
type ConvertLine struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// ConvertParams describes a conversion of a document into its next type
type ConvertParams struct {
	Target Type
	// Lines restricts the conversion to some lines; empty means every line in full
	Lines           []ConvertLine
	DeliveryDate    *time.Time
	DeliveryAddress string
	DeliveryCity    string
	DeliveryNotes   string
	DueDate         *time.Time
	AvoirReason     string
	CreatedByID     *uuid.UUID
	Now             time.Time
}

// chainRefs returns the references a child of d inherits
func (d *Document) chainRefs() References {
	refs := d.Refs
	switch d.Type {
	case TypeDevis:
		refs.DevisRef = d.Number
	case TypeBonCommande:
		refs.BCRef = d.Number
	case TypeBonLivraison:
		refs.BLRef = d.Number
	case TypePVReception:
		refs.PVRef = d.Number
	case TypeFacture:
		refs.FactureRef = d.Number
	}
	return refs
}

func (d *Document) findItem(id uuid.UUID) (int, bool) {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// child builds a draft of type t that inherits the client, terms and references of d
func (d *Document) child(t Type, items []Item, createdBy *uuid.UUID, now time.Time) *Document {
	parent := d.ID
	c := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              t,
		IsDraft:           true,
		Status:            StatusDraft,
		Client:            d.Client,
		ProjectID:         d.ProjectID,
		ParentID:          &parent,
		Refs:              d.chainRefs(),
		Date:              now,
		Delivery:          d.Delivery,
		DiscountType:      d.DiscountType,
		DiscountValue:     d.DiscountValue,
		Terms: Terms{
			DeliveryTime: d.Terms.DeliveryTime,
			Includes:     d.Terms.Includes,
			Excludes:     d.Terms.Excludes,
			Conditions:   d.Terms.Conditions,
			PaymentTerms: d.Terms.PaymentTerms,
		},
		PaidAmount:  decimal.Zero,
		CreatedByID: createdBy,
		Items:       items,
	}
	c.Number = sequence.DraftNumber(t.SequenceType(), now)
	c.CreatedAt, c.UpdatedAt = now, now
	return c
}

// Convert derives the next document of the chain from d. The child is a
// draft; the source status moves to DELIVERED or PARTIAL where the chain
// tracks deliveries.
func (d *Document) Convert(p ConvertParams) (*Document, error) {
	if err := CanConvert(d.Type, d.Status, p.Target); err != nil {
		return nil, err
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	var items []Item
	partial := false
	if len(p.Lines) == 0 {
		for i, it := range d.Items {
			items = append(items, it.copyFor(it.Quantity, i))
		}
	} else {
		ids := make([]uuid.UUID, len(p.Lines))
		for i, l := range p.Lines {
			ids[i] = l.ItemID
		}
		if err := uniqueLines(ids); err != nil {
			return nil, err
		}
		for _, l := range p.Lines {
			idx, ok := d.findItem(l.ItemID)
			if !ok {
				return nil, shared.NewDomainErrorf(CodeConversionNotAllowed, "Article introuvable : %s", l.ItemID)
			}
			src := d.Items[idx]
			if !l.Quantity.IsPositive() {
				return nil, shared.NewDomainError(CodeInvalidAmount, "La quantité doit être positive")
			}
			if l.Quantity.GreaterThan(src.Quantity) {
				return nil, shared.NewDomainErrorf(CodeInvalidAmount,
					"Quantité demandée (%s) supérieure à la quantité du document (%s) pour « %s »",
					l.Quantity, src.Quantity, src.Designation)
			}
			if l.Quantity.LessThan(src.Quantity) {
				partial = true
			}
			items = append(items, src.copyFor(l.Quantity, len(items)))
		}
		if len(items) < len(d.Items) {
			partial = true
		}
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(CodeConversionNotAllowed, "Aucun article à convertir")
	}

	if p.Target == TypeBonLivraison {
		for i := range items {
			src, _ := d.findItem(*items[i].SourceItemID)
			items[i].OrderedQty = d.Items[src].Quantity
			items[i].DeliveredQty = items[i].Quantity
		}
	}

	c := d.child(p.Target, items, p.CreatedByID, now)
	if p.DeliveryDate != nil {
		c.Delivery.Date = p.DeliveryDate
	}
	if p.DeliveryAddress != "" {
		c.Delivery.Address = p.DeliveryAddress
	}
	if p.DeliveryCity != "" {
		c.Delivery.City = p.DeliveryCity
	}
	if p.DeliveryNotes != "" {
		c.Delivery.Notes = p.DeliveryNotes
	}
	c.DueDate = p.DueDate
	c.AvoirReason = p.AvoirReason
	c.Recalculate()
	c.AddDomainEvent(withActor(NewDocumentCreatedEvent(c), p.CreatedByID))

	switch {
	case partial && (d.Type == TypeBonCommande || d.Type == TypeBonLivraison):
		d.Status = StatusPartial
	case !partial && d.Type == TypeBonCommande && p.Target == TypeBonLivraison:
		d.Status = StatusDelivered
	case !partial && d.Type == TypeBonLivraison:
		d.Status = StatusDelivered
	}
	d.ChildType = p.Target
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentConvertedEvent(d, c, partial), p.CreatedByID))
	return c, nil
}

// DeliveryLine is one line of a partial delivery
type DeliveryLine struct {
	ItemID   uuid.UUID       `json:"bcItemId"`
	Quantity decimal.Decimal `json:"deliverQty"`
}

// DeliveryLog records one partial delivery of a bon de commande
type DeliveryLog struct {
	ID         uuid.UUID
	BCID       uuid.UUID
	BLID       uuid.UUID
	Lines      []DeliveryLine
	Date       time.Time
	ReceivedBy string
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
}

// PartialDeliveryParams describes goods leaving for one delivery
type PartialDeliveryParams struct {
	Lines       []DeliveryLine
	Date        *time.Time
	Address     string
	City        string
	Notes       string
	ReceivedBy  string
	CreatedByID *uuid.UUID
	Now         time.Time
}

// DeliverPartially builds the BL for a delivery of some quantities of the
// bon de commande, updates the delivered quantities and the BC status.
func (d *Document) DeliverPartially(p PartialDeliveryParams) (*Document, *DeliveryLog, error) {
	if d.Type != TypeBonCommande {
		return nil, nil, shared.NewDomainError(CodeInvalidDelivery, "Seul un bon de commande peut faire l'objet d'une livraison partielle")
	}
	if d.Status != StatusConfirmed && d.Status != StatusPartial {
		return nil, nil, shared.NewDomainError(CodeInvalidDelivery, "Le bon de commande doit être CONFIRMED ou PARTIAL pour être livré")
	}
	if len(p.Lines) == 0 {
		return nil, nil, shared.NewDomainError(CodeInvalidDelivery, "Au moins un article à livrer est requis")
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	ids := make([]uuid.UUID, len(p.Lines))
	for i, l := range p.Lines {
		ids[i] = l.ItemID
	}
	if err := uniqueLines(ids); err != nil {
		return nil, nil, err
	}

	items := make([]Item, 0, len(p.Lines))
	for _, l := range p.Lines {
		idx, ok := d.findItem(l.ItemID)
		if !ok {
			return nil, nil, shared.NewDomainErrorf(CodeInvalidDelivery, "Article introuvable dans le bon de commande : %s", l.ItemID)
		}
		src := d.Items[idx]
		if !l.Quantity.IsPositive() {
			return nil, nil, shared.NewDomainError(CodeInvalidDelivery, "La quantité à livrer doit être positive")
		}
		remaining := src.Quantity.Sub(src.TotalDeliveredQty)
		if l.Quantity.GreaterThan(remaining) {
			return nil, nil, shared.NewDomainErrorf(CodeInvalidDelivery,
				"Quantité à livrer (%s) supérieure au reste à livrer (%s) pour « %s »",
				l.Quantity, remaining, src.Designation)
		}
		line := src.copyFor(l.Quantity, len(items))
		line.OrderedQty = src.Quantity
		line.DeliveredQty = l.Quantity
		line.TotalDeliveredQty = src.TotalDeliveredQty.Add(l.Quantity)
		line.RemainingQty = src.Quantity.Sub(line.TotalDeliveredQty)
		items = append(items, line)
	}

	for _, l := range p.Lines {
		idx, _ := d.findItem(l.ItemID)
		it := &d.Items[idx]
		it.OrderedQty = it.Quantity
		it.TotalDeliveredQty = it.TotalDeliveredQty.Add(l.Quantity)
		it.RemainingQty = it.Quantity.Sub(it.TotalDeliveredQty)
	}

	bl := d.child(TypeBonLivraison, items, p.CreatedByID, now)
	bl.Delivery.Date = p.Date
	if bl.Delivery.Date == nil {
		bl.Delivery.Date = &now
	}
	if p.Address != "" {
		bl.Delivery.Address = p.Address
	}
	if p.City != "" {
		bl.Delivery.City = p.City
	}
	if p.Notes != "" {
		bl.Delivery.Notes = p.Notes
	}
	bl.Reception.ReceivedBy = p.ReceivedBy
	bl.Recalculate()
	bl.AddDomainEvent(withActor(NewDocumentCreatedEvent(bl), p.CreatedByID))

	d.Status = StatusDelivered
	for _, it := range d.Items {
		if it.Quantity.Sub(it.TotalDeliveredQty).IsPositive() {
			d.Status = StatusPartial
			break
		}
	}
	d.ChildType = TypeBonLivraison
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(withActor(NewDocumentConvertedEvent(d, bl, d.Status == StatusPartial), p.CreatedByID))

	log := &DeliveryLog{
		ID:         uuid.New(),
		BCID:       d.ID,
		BLID:       bl.ID,
		Lines:      p.Lines,
		Date:       *bl.Delivery.Date,
		ReceivedBy: p.ReceivedBy,
		CreatedBy:  p.CreatedByID,
		CreatedAt:  now,
	}
	return bl, log, nil
}

// DeliveryStatus is the per line delivery progress of a bon de commande
type DeliveryStatus struct {
	ItemID            uuid.UUID       `json:"itemId"`
	Designation       string          `json:"designation"`
	OrderedQty        decimal.Decimal `json:"orderedQty"`
	TotalDeliveredQty decimal.Decimal `json:"totalDeliveredQty"`
	RemainingQty      decimal.Decimal `json:"remainingQty"`
	FullyDelivered    bool            `json:"fullyDelivered"`
}

// DeliveryProgress reports what is left to deliver on each line
func (d *Document) DeliveryProgress() []DeliveryStatus {
	out := make([]DeliveryStatus, len(d.Items))
	for i, it := range d.Items {
		remaining := it.Quantity.Sub(it.TotalDeliveredQty)
		out[i] = DeliveryStatus{
			ItemID:            it.ID,
			Designation:       it.Designation,
			OrderedQty:        it.Quantity,
			TotalDeliveredQty: it.TotalDeliveredQty,
			RemainingQty:      remaining,
			FullyDelivered:    !remaining.IsPositive(),
		}
	}
	return out
}

// uniqueLines rejects a selection naming the same source line twice
func uniqueLines(ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return shared.NewValidationError("Données invalides", shared.ErrorDetail{
				Field:   "lines",
				Message: "Article sélectionné plusieurs fois : " + id.String(),
			})
		}
		seen[id] = struct{}{}
	}
	return nil
}
