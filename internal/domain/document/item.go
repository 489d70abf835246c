package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultUnit is used when a line has no unit
const DefaultUnit = "pcs"

// Item is a priced line of a document
type Item struct {
	ID            uuid.UUID
	CatalogItemID *uuid.UUID
	// SourceItemID links a BL or PV line to the line it was copied from
	SourceItemID *uuid.UUID

	Reference       string
	Designation     string
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPriceHT     decimal.Decimal
	DiscountPercent decimal.Decimal
	TVARate         int

	DiscountAmount decimal.Decimal
	TotalHT        decimal.Decimal
	TotalTVA       decimal.Decimal
	TotalTTC       decimal.Decimal

	// Delivery tracking, set on BC and BL lines
	OrderedQty        decimal.Decimal
	DeliveredQty      decimal.Decimal
	TotalDeliveredQty decimal.Decimal
	RemainingQty      decimal.Decimal

	Position int
}

// ItemInput carries the user supplied part of a line
type ItemInput struct {
	CatalogItemID   *uuid.UUID
	SourceItemID    *uuid.UUID
	Reference       string
	Designation     string
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPriceHT     decimal.Decimal
	DiscountPercent decimal.Decimal
	TVARate         *int
}

// NewItem validates the input and prices the line
func NewItem(in ItemInput, position int) (Item, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", position, name) }
	// match the stored column scales so the integrity hash survives a reload
	in.Quantity = in.Quantity.Round(3)
	in.UnitPriceHT = round2(in.UnitPriceHT)
	in.DiscountPercent = round2(in.DiscountPercent)
	var details []shared.ErrorDetail
	if strings.TrimSpace(in.Designation) == "" {
		details = append(details, shared.ErrorDetail{Field: field("designation"), Message: "La désignation est requise"})
	}
	if !in.Quantity.IsPositive() {
		details = append(details, shared.ErrorDetail{Field: field("quantity"), Message: "La quantité doit être positive"})
	}
	if in.UnitPriceHT.IsNegative() {
		details = append(details, shared.ErrorDetail{Field: field("unitPriceHT"), Message: "Le prix unitaire ne peut pas être négatif"})
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		details = append(details, shared.ErrorDetail{Field: field("discountPercent"), Message: "La remise doit être comprise entre 0 et 100"})
	}
	rate := DefaultVATRate
	if in.TVARate != nil {
		rate = *in.TVARate
	}
	if !IsValidVATRate(rate) {
		details = append(details, shared.ErrorDetail{Field: field("tvaRate"), Message: fmt.Sprintf("Taux de TVA invalide : %d", rate)})
	}
	if len(details) > 0 {
		return Item{}, shared.NewValidationError("Données invalides", details...)
	}

	unit := in.Unit
	if unit == "" {
		unit = DefaultUnit
	}
	it := Item{
		ID:              uuid.New(),
		CatalogItemID:   in.CatalogItemID,
		SourceItemID:    in.SourceItemID,
		Reference:       in.Reference,
		Designation:     strings.TrimSpace(in.Designation),
		Description:     in.Description,
		Quantity:        in.Quantity,
		Unit:            unit,
		UnitPriceHT:     in.UnitPriceHT,
		DiscountPercent: in.DiscountPercent,
		TVARate:         rate,
		Position:        position,
	}
	it.recalculate()
	return it, nil
}

// NewItems builds the lines of a document in order
func NewItems(inputs []ItemInput) ([]Item, error) {
	items := make([]Item, 0, len(inputs))
	var details []shared.ErrorDetail
	for i, in := range inputs {
		it, err := NewItem(in, i)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				details = append(details, de.Details...)
				continue
			}
			return nil, err
		}
		items = append(items, it)
	}
	if len(details) > 0 {
		return nil, shared.NewValidationError("Données invalides", details...)
	}
	return items, nil
}

func (it Item) lineInput() LineInput {
	return LineInput{
		Quantity:        it.Quantity,
		UnitPriceHT:     it.UnitPriceHT,
		DiscountPercent: it.DiscountPercent,
		TVARate:         it.TVARate,
	}
}

func (it *Item) recalculate() {
	lt := CalculateLine(it.lineInput())
	it.DiscountAmount = lt.DiscountAmount
	it.TotalHT = lt.NetHT
	it.TotalTVA = lt.TVAAmount
	it.TotalTTC = lt.TotalTTC
}

// copyFor duplicates the line for a converted document with a new quantity
func (it Item) copyFor(qty decimal.Decimal, position int) Item {
	src := it.ID
	c := it
	c.ID = uuid.New()
	c.SourceItemID = &src
	c.Quantity = qty
	c.Position = position
	c.OrderedQty = decimal.Zero
	c.DeliveredQty = decimal.Zero
	c.TotalDeliveredQty = decimal.Zero
	c.RemainingQty = decimal.Zero
	c.recalculate()
	return c
}
