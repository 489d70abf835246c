package shop

import (
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder names the order aggregate in events
const AggregateTypeOrder = "ShopOrder"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedEvent is published when a customer checks out
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	Number        string          `json:"number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
	}
}

// OrderPaidEvent is published when an order is settled
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Number  string          `json:"number"`
	Total   decimal.Decimal `json:"total"`
}

// NewOrderPaidEvent creates an OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		Total:           o.Total,
	}
}

// OrderStatusChangedEvent is published on every workflow move
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	Number    string    `json:"number"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
		OldStatus:       old,
		NewStatus:       o.Status,
	}
}
