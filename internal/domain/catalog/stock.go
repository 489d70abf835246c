package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

// IsValid reports whether the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// StockMovement records one change of an item's stock
type StockMovement struct {
	shared.BaseEntity
	ItemID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type        MovementType     `gorm:"type:varchar(20);not null"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(14,3);not null"`
	PreviousQty decimal.Decimal  `gorm:"type:decimal(14,3);not null"`
	NewQty      decimal.Decimal  `gorm:"type:decimal(14,3);not null"`
	Reference   *string          `gorm:"type:varchar(100)"`
	Reason      *string          `gorm:"type:varchar(255)"`
	Notes       *string          `gorm:"type:text"`
	UnitCost    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	CreatedByID *uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// MovementParams describes a movement to apply
type MovementParams struct {
	Type      MovementType
	Quantity  decimal.Decimal
	Reference *string
	Reason    *string
	Notes     *string
	UnitCost  *decimal.Decimal
	By        *uuid.UUID
}

// Move applies a movement to a tracked item and returns its record. For an
// adjustment the quantity is the new stock level.
func (it *Item) Move(p MovementParams, now time.Time) (*StockMovement, error) {
	if !it.TrackStock {
		return nil, shared.NewDomainError(CodeStockNotTracked, "Le suivi de stock n'est pas activé pour cet article")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidMovement, "Type de mouvement invalide")
	}
	if p.Type == MovementAdjustment {
		if p.Quantity.IsNegative() {
			return nil, shared.NewValidationError("Données invalides",
				shared.ErrorDetail{Field: "quantity", Message: "Quantité requise"})
		}
	} else if !p.Quantity.IsPositive() {
		return nil, shared.NewValidationError("Données invalides",
			shared.ErrorDetail{Field: "quantity", Message: "Quantité requise"})
	}

	previous := it.StockQty
	var next decimal.Decimal
	switch p.Type {
	case MovementIn, MovementReturn:
		next = previous.Add(p.Quantity)
	case MovementOut:
		next = previous.Sub(p.Quantity)
		if next.IsNegative() {
			return nil, shared.NewDomainError(CodeInsufficientStock, "Stock insuffisant")
		}
	case MovementAdjustment:
		next = p.Quantity
	}

	it.StockQty = next
	it.UpdatedAt = now
	it.IncrementVersion()
	if it.IsLowStock() && !previous.LessThanOrEqual(*it.StockMin) {
		it.AddDomainEvent(NewStockBelowMinimumEvent(it))
	}

	return &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		ItemID:      it.ID,
		Type:        p.Type,
		Quantity:    next.Sub(previous).Abs(),
		PreviousQty: previous,
		NewQty:      next,
		Reference:   p.Reference,
		Reason:      p.Reason,
		Notes:       p.Notes,
		UnitCost:    p.UnitCost,
		CreatedByID: p.By,
	}, nil
}

// AdjustmentReason is the default reason of a bulk adjustment line
func AdjustmentReason(diff decimal.Decimal) string {
	if diff.IsPositive() {
		return "Ajustement positif"
	}
	return "Ajustement négatif"
}

// StockStats summarises the tracked stock
type StockStats struct {
	TotalItems     int             `json:"totalItems"`
	LowStockItems  int             `json:"lowStockItems"`
	OverStockItems int             `json:"overStockItems"`
	TotalValue     decimal.Decimal `json:"totalValue"`
}

// ComputeStockStats counts low and over stock items and values the stock
func ComputeStockStats(items []Item) StockStats {
	stats := StockStats{TotalItems: len(items), TotalValue: decimal.Zero}
	for i := range items {
		it := &items[i]
		if it.IsLowStock() {
			stats.LowStockItems++
		}
		if it.IsOverStock() {
			stats.OverStockItems++
		}
		stats.TotalValue = stats.TotalValue.Add(it.StockValue())
	}
	return stats
}
