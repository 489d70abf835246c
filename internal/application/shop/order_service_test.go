package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newItem(t *testing.T, sku, name, priceHT string, tracked bool, qty string) *catalog.Item {
	t.Helper()
	p := catalog.ItemParams{
		Name:           name,
		SellingPriceHT: decimal.RequireFromString(priceHT),
		TrackStock:     tracked,
		Images:         []string{"/uploads/products/" + sku + ".jpg"},
	}
	if tracked {
		q := decimal.RequireFromString(qty)
		floor := decimal.NewFromInt(2)
		p.StockQty = &q
		p.StockMin = &floor
	}
	it, err := catalog.NewItem(sku, p)
	require.NoError(t, err)
	return it
}

func cart(method string, lines ...CartLine) PlaceOrderRequest {
	return PlaceOrderRequest{
		Customer: CustomerRequest{
			Name:    "Youssef Benali",
			Email:   "Youssef@Example.ma",
			Phone:   "0661000000",
			Address: "45 avenue Hassan II",
			City:    "Fès",
		},
		Items:         lines,
		PaymentMethod: method,
	}
}

// stock reads the stored level; repositories hand out copies
func (f *shopFixture) stock(it *catalog.Item) decimal.Decimal {
	return f.env.items.items[it.ID].StockQty
}

type shopFixture struct {
	env   *testEnv
	table *catalog.Item
	stool *catalog.Item
}

func newShopFixture(t *testing.T) *shopFixture {
	table := newItem(t, "LTB-PRD-0001", "Table en noyer", "500", true, "5")
	stool := newItem(t, "LTB-PRD-0002", "Tabouret", "250", false, "")
	env := newTestEnv(table, stool)
	env.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return(nil).Maybe()
	return &shopFixture{env: env, table: table, stool: stool}
}

func TestPlace_PricesFromCatalogAndMovesStock(t *testing.T) {
	f := newShopFixture(t)

	resp, err := f.env.orderSvc.Place(context.Background(), cart("COD",
		CartLine{ItemID: f.table.ID, Quantity: 1},
		CartLine{ItemID: f.stool.ID, Quantity: 1},
		CartLine{ItemID: f.table.ID, Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, "ORD-2025-0001", resp.OrderNumber)
	assert.Equal(t, "youssef@example.ma", resp.CustomerEmail)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(600).Equal(resp.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(1500).Equal(resp.Subtotal))
	assert.True(t, resp.ShippingAmount.IsZero(), "free delivery above 1000 MAD")
	assert.True(t, decimal.NewFromInt(1500).Equal(resp.Total))

	assert.True(t, decimal.NewFromInt(3).Equal(f.stock(f.table)))
	require.Len(t, f.env.movements.movements, 1)
	m := f.env.movements.movements[0]
	assert.Equal(t, catalog.MovementOut, m.Type)
	require.NotNil(t, m.Reference)
	assert.Equal(t, "ORD-2025-0001", *m.Reference)

	assert.Contains(t, f.env.audits.actions(), audit.ActionCreate)
	assert.Contains(t, f.env.publisher.types(), shop.EventTypeOrderPlaced)
	f.env.notifier.AssertCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
}

func TestPlace_ChargesShippingBelowThreshold(t *testing.T) {
	f := newShopFixture(t)

	resp, err := f.env.orderSvc.Place(context.Background(), cart("COD", CartLine{ItemID: f.stool.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(resp.ShippingAmount))
	assert.True(t, decimal.NewFromInt(350).Equal(resp.Total))
}

func TestPlace_InsufficientStockConsumesNoNumber(t *testing.T) {
	f := newShopFixture(t)

	_, err := f.env.orderSvc.Place(context.Background(), cart("COD", CartLine{ItemID: f.table.ID, Quantity: 6}))
	require.Error(t, err)
	assert.Equal(t, catalog.CodeInsufficientStock, domainCode(err))
	assert.Empty(t, f.env.seq.counters)
	assert.True(t, decimal.NewFromInt(5).Equal(f.stock(f.table)))
}

func TestPlace_InactiveItemIsUnavailable(t *testing.T) {
	f := newShopFixture(t)
	f.stool.Deactivate(testNow)

	_, err := f.env.orderSvc.Place(context.Background(), cart("COD", CartLine{ItemID: f.stool.ID, Quantity: 1}))
	assert.Equal(t, shop.CodeItemUnavailable, domainCode(err))
}

func TestPlace_NotifierFailureDoesNotFailOrder(t *testing.T) {
	table := newItem(t, "LTB-PRD-0001", "Table en noyer", "500", true, "5")
	env := newTestEnv(table)
	env.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := env.orderSvc.Place(context.Background(), cart("BANK_TRANSFER", CartLine{ItemID: table.ID, Quantity: 1}))
	assert.NoError(t, err)
}

func TestCancel_RestoresStock(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	placed, err := f.env.orderSvc.Place(ctx, cart("COD", CartLine{ItemID: f.table.ID, Quantity: 2}))
	require.NoError(t, err)

	note := "Rupture client"
	resp, err := f.env.orderSvc.UpdateStatus(ctx, placed.ID, StatusRequest{Status: "CANCELLED", Note: &note}, nil)
	require.NoError(t, err)

	assert.Equal(t, "CANCELLED", resp.Status)
	assert.True(t, decimal.NewFromInt(5).Equal(f.stock(f.table)))
	require.Len(t, f.env.movements.movements, 2)
	assert.Equal(t, catalog.MovementReturn, f.env.movements.movements[1].Type)

	_, err = f.env.orderSvc.Cancel(ctx, placed.ID, nil, nil)
	assert.Equal(t, shop.CodeInvalidTransition, domainCode(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	placed, err := f.env.orderSvc.Place(ctx, cart("COD", CartLine{ItemID: f.stool.ID, Quantity: 1}))
	require.NoError(t, err)

	tracking := "AMANA-778812"
	resp, err := f.env.orderSvc.UpdateStatus(ctx, placed.ID, StatusRequest{Status: "CONFIRMED", PaymentStatus: "PAID", TrackingNumber: &tracking}, nil)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "PAID", resp.PaymentStatus)
	assert.Equal(t, &tracking, resp.TrackingNumber)
	assert.Contains(t, f.env.audits.actions(), audit.ActionPayment)

	_, err = f.env.orderSvc.UpdateStatus(ctx, placed.ID, StatusRequest{Status: "DELIVERED"}, nil)
	assert.Equal(t, shop.CodeInvalidTransition, domainCode(err))
}

func TestTrack(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	_, err := f.env.orderSvc.Place(ctx, cart("COD", CartLine{ItemID: f.stool.ID, Quantity: 1}))
	require.NoError(t, err)

	resp, err := f.env.orderSvc.Track(ctx, TrackRequest{OrderNumber: "ORD-2025-0001", Email: "YOUSSEF@example.MA"})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Len(t, resp.Events, 1)

	_, err = f.env.orderSvc.Track(ctx, TrackRequest{OrderNumber: "ORD-2025-0001", Email: "other@example.ma"})
	assert.ErrorIs(t, err, shop.ErrOrderNotFound)
}

func TestList(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.env.orderSvc.Place(ctx, cart("COD", CartLine{ItemID: f.stool.ID, Quantity: 1}))
		require.NoError(t, err)
	}

	resp, err := f.env.orderSvc.List(ctx, ListRequest{Range: "today"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, int64(3), resp.Stats.PendingOrders)
	assert.Equal(t, "ORD-2025-0003", resp.Items[0].OrderNumber)
}

func TestRangeStart(t *testing.T) {
	assert.Nil(t, rangeStart("", testNow))
	assert.Equal(t, "2025-06-18", rangeStart("today", testNow).Format("2006-01-02"))
	assert.Equal(t, "2025-06-11", rangeStart("week", testNow).Format("2006-01-02"))
	assert.Equal(t, "2025-05-18", rangeStart("month", testNow).Format("2006-01-02"))
}
