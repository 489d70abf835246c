// Package catalog holds the workshop catalog: products and services sold on
// documents and in the shop, their categories, suppliers and stock.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemType distinguishes stocked goods from services
type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemService ItemType = "SERVICE"
)

// Unit is the sale unit of an item
type Unit string

const (
	UnitPiece    Unit = "PCS"
	UnitSquareM  Unit = "M2"
	UnitLinearM  Unit = "ML"
	UnitCubicM   Unit = "M3"
	UnitKilogram Unit = "KG"
	UnitLitre    Unit = "L"
	UnitHour     Unit = "H"
	UnitFlatRate Unit = "FORFAIT"
	UnitDay      Unit = "DAY"
)

// IsValid reports whether the unit is known
func (u Unit) IsValid() bool {
	switch u {
	case UnitPiece, UnitSquareM, UnitLinearM, UnitCubicM, UnitKilogram, UnitLitre, UnitHour, UnitFlatRate, UnitDay:
		return true
	}
	return false
}

// Error codes raised by the catalog
const (
	CodeSKUExists         = "SKU_EXISTS"
	CodeSlugExists        = "SLUG_EXISTS"
	CodeSupplierExists    = "SUPPLIER_CODE_EXISTS"
	CodeCategoryInUse     = "CATEGORY_IN_USE"
	CodeStockNotTracked   = "STOCK_NOT_TRACKED"
	CodeInvalidMovement   = "INVALID_MOVEMENT"
	CodeInvalidParent     = "INVALID_PARENT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
)

var (
	hundred    = decimal.NewFromInt(100)
	codeSuffix = regexp.MustCompile(`-(\d+)$`)
)

// Lookup misses with their French messages
var (
	ErrItemNotFound     = shared.NotFound("Article non trouvé")
	ErrCategoryNotFound = shared.NotFound("Catégorie non trouvée")
	ErrSupplierNotFound = shared.NotFound("Fournisseur non trouvé")
)

// Item is a product or service of the catalog
type Item struct {
	shared.BaseAggregateRoot
	SKU            string           `gorm:"column:sku;type:varchar(30);not null;uniqueIndex"`
	Type           ItemType         `gorm:"type:varchar(10);not null;default:'PRODUCT';index"`
	CategoryID     *uuid.UUID       `gorm:"type:uuid;index"`
	Name           string           `gorm:"type:varchar(200);not null"`
	Description    *string          `gorm:"type:text"`
	Unit           Unit             `gorm:"type:varchar(10);not null;default:'PCS'"`
	PurchasePrice  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	SellingPriceHT decimal.Decimal  `gorm:"column:selling_price_ht;type:decimal(14,2);not null"`
	TVARate        decimal.Decimal  `gorm:"column:tva_rate;type:decimal(5,2);not null;default:20"`
	MaxDiscount    *decimal.Decimal `gorm:"type:decimal(5,2)"`
	TrackStock     bool             `gorm:"not null;default:false"`
	StockQty       decimal.Decimal  `gorm:"type:decimal(14,3);not null;default:0"`
	StockMin       *decimal.Decimal `gorm:"type:decimal(14,3)"`
	StockMax       *decimal.Decimal `gorm:"type:decimal(14,3)"`
	StockLocation  *string          `gorm:"type:varchar(100)"`
	SupplierID     *uuid.UUID       `gorm:"type:uuid;index"`
	Images         []string         `gorm:"type:jsonb;serializer:json"`
	IsActive       bool             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "catalog_items"
}

// ItemParams carries the editable fields of an item
type ItemParams struct {
	Type           ItemType
	CategoryID     *uuid.UUID
	Name           string
	Description    *string
	Unit           Unit
	PurchasePrice  *decimal.Decimal
	SellingPriceHT decimal.Decimal
	TVARate        *decimal.Decimal
	MaxDiscount    *decimal.Decimal
	TrackStock     bool
	StockQty       *decimal.Decimal
	StockMin       *decimal.Decimal
	StockMax       *decimal.Decimal
	StockLocation  *string
	SupplierID     *uuid.UUID
	Images         []string
	IsActive       *bool
}

func (p *ItemParams) normalize() {
	if p.Type == "" {
		p.Type = ItemProduct
	}
	if p.Unit == "" {
		p.Unit = UnitPiece
	}
	if p.TVARate == nil {
		rate := decimal.NewFromInt(20)
		p.TVARate = &rate
	}
	p.Name = strings.TrimSpace(p.Name)
}

func (p ItemParams) validate() error {
	var details []shared.ErrorDetail
	add := func(field, msg string) { details = append(details, shared.ErrorDetail{Field: field, Message: msg}) }
	if p.Type != ItemProduct && p.Type != ItemService {
		add("type", "Type invalide")
	}
	if p.Name == "" {
		add("name", "Nom requis")
	}
	if !p.Unit.IsValid() {
		add("unit", "Unité invalide")
	}
	if p.SellingPriceHT.IsNegative() {
		add("sellingPriceHT", "Prix HT requis")
	}
	if p.TVARate.IsNegative() || p.TVARate.GreaterThan(hundred) {
		add("tvaRate", "Taux de TVA invalide")
	}
	if p.MaxDiscount != nil && (p.MaxDiscount.IsNegative() || p.MaxDiscount.GreaterThan(hundred)) {
		add("maxDiscount", "Remise maximale invalide")
	}
	if p.StockQty != nil && p.StockQty.IsNegative() {
		add("stockQty", "Le stock ne peut pas être négatif")
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// SKUPrefix is the SKU prefix for items of the type
func SKUPrefix(t ItemType) string {
	if t == ItemService {
		return "LTB-SRV"
	}
	return "LTB-PRD"
}

// NextCode continues a prefix-NNN code series after the last code issued
func NextCode(prefix, last string, pad int) string {
	next := 1
	if m := codeSuffix.FindStringSubmatch(last); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%0*d", prefix, pad, next)
}

// NewItem validates and creates a catalog item
func NewItem(sku string, p ItemParams) (*Item, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	it := &Item{BaseAggregateRoot: shared.NewBaseAggregateRoot(), SKU: strings.TrimSpace(sku), IsActive: true}
	it.apply(p)
	if p.StockQty != nil {
		it.StockQty = *p.StockQty
	}
	return it, nil
}

func (it *Item) apply(p ItemParams) {
	it.Type = p.Type
	it.CategoryID = p.CategoryID
	it.Name = p.Name
	it.Description = p.Description
	it.Unit = p.Unit
	it.PurchasePrice = p.PurchasePrice
	it.SellingPriceHT = p.SellingPriceHT
	it.TVARate = *p.TVARate
	it.MaxDiscount = p.MaxDiscount
	it.TrackStock = p.TrackStock
	it.StockMin = p.StockMin
	it.StockMax = p.StockMax
	it.StockLocation = p.StockLocation
	it.SupplierID = p.SupplierID
	it.Images = p.Images
	if p.IsActive != nil {
		it.IsActive = *p.IsActive
	}
}

// Update replaces the editable fields. The stock quantity only moves through movements.
func (it *Item) Update(p ItemParams, now time.Time) error {
	p.normalize()
	p.StockQty = nil
	if err := p.validate(); err != nil {
		return err
	}
	it.apply(p)
	it.UpdatedAt = now
	it.IncrementVersion()
	return nil
}

// Deactivate hides the item without deleting it
func (it *Item) Deactivate(now time.Time) {
	it.IsActive = false
	it.UpdatedAt = now
	it.IncrementVersion()
}

// SellingPriceTTC is the HT price with VAT
func (it *Item) SellingPriceTTC() decimal.Decimal {
	return it.SellingPriceHT.Mul(hundred.Add(it.TVARate)).Div(hundred).Round(2)
}

// IsLowStock reports a tracked item at or under its minimum
func (it *Item) IsLowStock() bool {
	return it.TrackStock && it.StockMin != nil && it.StockQty.LessThanOrEqual(*it.StockMin)
}

// IsOverStock reports a tracked item at or over its maximum
func (it *Item) IsOverStock() bool {
	return it.TrackStock && it.StockMax != nil && it.StockQty.GreaterThanOrEqual(*it.StockMax)
}

// StockValue values the stock at purchase price
func (it *Item) StockValue() decimal.Decimal {
	if it.PurchasePrice == nil {
		return decimal.Zero
	}
	return it.StockQty.Mul(*it.PurchasePrice)
}

// ItemFilter narrows an item listing
type ItemFilter struct {
	shared.Filter
	Type       ItemType
	CategoryID *uuid.UUID
	SupplierID *uuid.UUID
	ActiveOnly bool
	LowStock   bool
}
