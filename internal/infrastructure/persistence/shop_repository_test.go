package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, number, email string, method shop.PaymentMethod, itemID uuid.UUID, at time.Time) *shop.Order {
	t.Helper()
	o, err := shop.NewOrder(number, shop.OrderParams{
		Customer: shop.Customer{
			Name: "Karim Alaoui", Email: email, Phone: "0600000000",
			Address: "3 derb Lalla Zineb", City: "Rabat",
		},
		PaymentMethod: method,
		Lines: []shop.Line{{
			CatalogItemID: itemID, Name: "Coffret en thuya", SKU: "LTB-PRD-0007",
			Quantity: 2, UnitPrice: decimal.NewFromInt(240),
		}},
		ShippingAmount: decimal.NewFromInt(50),
	}, at)
	require.NoError(t, err)
	o.CreatedAt, o.UpdatedAt = at, at
	return o
}

func TestGormOrderRepository(t *testing.T) {
	db := newSQLiteDB(t, &shop.Order{}, &shop.OrderItem{}, &shop.TrackingEvent{})
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	itemID := uuid.New()

	first := newTestOrder(t, "ORD-2025-0001", "karim@example.ma", shop.PaymentStripe, itemID, now.AddDate(0, 0, -2))
	second := newTestOrder(t, "ORD-2025-0002", "nadia@example.ma", shop.PaymentCOD, uuid.New(), now)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	t.Run("loads lines and timeline", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.True(t, decimal.NewFromInt(480).Equal(got.Items[0].Total))
		require.Len(t, got.Events, 1)
		assert.True(t, decimal.NewFromInt(530).Equal(got.Total))
	})

	t.Run("tracking ignores case", func(t *testing.T) {
		got, err := repo.FindForTracking(ctx, "ord-2025-0001", "KARIM@example.ma")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = repo.FindForTracking(ctx, "ORD-2025-0001", "nadia@example.ma")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("payment updates append to the timeline", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		got.AttachCheckoutSession("cs_1", now)
		got.MarkPaid("pi_1", now)
		require.NoError(t, repo.Save(ctx, got))

		bySession, err := repo.FindByCheckoutSession(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, shop.PaymentPaid, bySession.PaymentStatus)
		assert.Len(t, bySession.Events, 2)

		byIntent, err := repo.FindByPaymentIntent(ctx, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, byIntent.ID)
	})

	t.Run("rejects a stale copy", func(t *testing.T) {
		stale := *first
		stale.Version = 1
		assert.Error(t, repo.Save(ctx, &stale))
	})

	t.Run("lists and filters", func(t *testing.T) {
		orders, total, err := repo.FindAll(ctx, shop.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "ORD-2025-0002", orders[0].Number)

		since := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
		_, total, err = repo.FindAll(ctx, shop.Filter{Since: &since})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.FindAll(ctx, shop.Filter{Filter: shared.Filter{Search: "NADIA"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.FindAll(ctx, shop.Filter{PaymentStatus: shop.PaymentPaid})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalOrders)
		assert.Equal(t, int64(1), stats.PendingOrders)
		assert.Equal(t, int64(1), stats.TodayOrders)
		assert.True(t, decimal.NewFromInt(530).Equal(stats.TotalRevenue))
	})

	t.Run("item usage", func(t *testing.T) {
		used, err := repo.ItemInUse(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, used)

		used, err = repo.ItemInUse(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, used)
	})
}
