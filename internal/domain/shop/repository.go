package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines persistence for orders
type OrderRepository interface {
	// FindByID loads an order with its items and timeline
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	// FindForTracking matches the number and the email, case insensitive
	FindForTracking(ctx context.Context, number, email string) (*Order, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*Order, error)
	FindByPaymentIntent(ctx context.Context, paymentIntent string) (*Order, error)
	FindAll(ctx context.Context, filter Filter) ([]Order, int64, error)
	Stats(ctx context.Context, today time.Time) (Stats, error)
	// ItemInUse reports whether any order line references the catalog item
	ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error)
	Save(ctx context.Context, o *Order) error
}
