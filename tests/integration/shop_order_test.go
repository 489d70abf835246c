package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
	shopapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
)

// TestShopOrder_Integration places, rejects and cancels shop orders against
// tracked stock
func TestShopOrder_Integration(t *testing.T) {
	testDB := NewTestDB(t)
	svc := newServices(testDB)
	ctx := context.Background()

	qty, min := dec("5"), dec("2")
	item, err := svc.catalog.CreateItem(ctx, catalogapp.ItemRequest{
		Name:           "Plateau de service en thuya",
		Type:           string(catalog.ItemProduct),
		SellingPriceHT: dec("250"),
		TrackStock:     true,
		StockQty:       &qty,
		StockMin:       &min,
	})
	require.NoError(t, err)

	order := func(n int) shopapp.PlaceOrderRequest {
		return shopapp.PlaceOrderRequest{
			Customer: shopapp.CustomerRequest{
				Name:    "Salma Bennani",
				Email:   "salma@example.ma",
				Phone:   "0612345678",
				Address: "12 rue des Orangers",
				City:    "Marrakech",
			},
			Items:         []shopapp.CartLine{{ItemID: item.ID, Quantity: n}},
			PaymentMethod: string(shop.PaymentCOD),
		}
	}

	t.Run("an order larger than the stock is refused and leaves nothing behind", func(t *testing.T) {
		_, err := svc.orders.Place(ctx, order(10))
		require.Error(t, err)
		assert.Equal(t, catalog.CodeInsufficientStock, errorCode(err))
		assert.Zero(t, testDB.CountRows("shop_orders", ""))

		current, err := svc.catalog.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(current.StockQty))
	})

	placed, err := svc.orders.Place(ctx, order(4))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(placed.OrderNumber, "ORD-"))
	assert.Equal(t, string(shop.StatusPending), placed.Status)
	assert.True(t, placed.Subtotal.IsPositive())

	current, err := svc.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(current.StockQty), "got %s", current.StockQty)
	assert.True(t, current.IsLowStock)
	assert.Equal(t, int64(1), testDB.CountRows("stock_movements", "item_id = ?", item.ID))
	assert.True(t, svc.events.Has(shop.EventTypeOrderPlaced))
	assert.True(t, svc.events.Has(catalog.EventTypeStockBelowMinimum))

	t.Run("customers track their order by number and email", func(t *testing.T) {
		tracking, err := svc.orders.Track(ctx, shopapp.TrackRequest{OrderNumber: placed.OrderNumber, Email: "SALMA@example.ma"})
		require.NoError(t, err)
		assert.Equal(t, placed.OrderNumber, tracking.OrderNumber)
		require.Len(t, tracking.Items, 1)

		_, err = svc.orders.Track(ctx, shopapp.TrackRequest{OrderNumber: placed.OrderNumber, Email: "someone@else.ma"})
		require.Error(t, err)
	})

	cancelled, err := svc.orders.Cancel(ctx, placed.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, string(shop.StatusCancelled), cancelled.Status)

	current, err = svc.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(current.StockQty), "cancelling puts the stock back, got %s", current.StockQty)
	assert.Equal(t, int64(2), testDB.CountRows("stock_movements", "item_id = ?", item.ID))

	t.Run("a cancelled order cannot be cancelled again", func(t *testing.T) {
		_, err := svc.orders.Cancel(ctx, placed.ID, nil, nil)
		require.Error(t, err)
	})
}
