package catalog

import (
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeItem names the item aggregate in events
const AggregateTypeItem = "CatalogItem"

// EventTypeStockBelowMinimum fires when a movement takes a tracked item to its minimum
const EventTypeStockBelowMinimum = "StockBelowMinimum"

// StockBelowMinimumEvent feeds the low stock notification
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID       `json:"item_id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	StockQty decimal.Decimal `json:"stock_qty"`
	StockMin decimal.Decimal `json:"stock_min"`
}

// NewStockBelowMinimumEvent creates a StockBelowMinimumEvent
func NewStockBelowMinimumEvent(it *Item) *StockBelowMinimumEvent {
	floor := decimal.Zero
	if it.StockMin != nil {
		floor = *it.StockMin
	}
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeItem, it.ID),
		ItemID:          it.ID,
		SKU:             it.SKU,
		Name:            it.Name,
		StockQty:        it.StockQty,
		StockMin:        floor,
	}
}
