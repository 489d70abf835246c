package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appdocument "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func appointment(title string, assignee *uuid.UUID, location *string) *crm.Appointment {
	return &crm.Appointment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		StartDate:         time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC),
		EndDate:           time.Date(2025, 6, 3, 10, 30, 0, 0, time.UTC),
		Location:          location,
		AssignedToID:      assignee,
	}
}

func TestJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("overdue invoices", func(t *testing.T) {
		env := newTestEnv()
		sweeper := new(MockInvoiceSweeper)
		sweeper.On("MarkOverdueInvoices", ctx).Return([]appdocument.DocumentListItem{
			{ID: uuid.New(), Number: "FA-2025-0012", ClientName: "Riad Kniza", Balance: decimal.NewFromInt(5400)},
		}, nil)
		jobs := NewJobs(env.svc, sweeper, nil, nil, nil, zap.NewNop())

		n, err := jobs.CheckOverdueInvoices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, env.repo.items, 2)
		assert.Equal(t, notification.TypeInvoiceOverdue, env.repo.items[0].Type)
		assert.Equal(t, "Facture FA-2025-0012 en retard", env.repo.items[0].Title)
		assert.Contains(t, *env.repo.items[0].Message, "Riad Kniza")
	})

	t.Run("expiring quotes within three days", func(t *testing.T) {
		env := newTestEnv()
		sweeper := new(MockInvoiceSweeper)
		until := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
		sweeper.On("ExpiringQuotes", ctx, 72*time.Hour).Return([]appdocument.DocumentListItem{
			{ID: uuid.New(), Number: "DV-2025-0031", ClientName: "Hôtel Atlas", ValidUntil: &until},
		}, nil)
		jobs := NewJobs(env.svc, sweeper, nil, nil, nil, zap.NewNop())

		n, err := jobs.CheckExpiringQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "Le devis de Hôtel Atlas expire le 04/06/2025.", *env.repo.items[0].Message)
	})

	t.Run("appointment reminders use a 24 hour window", func(t *testing.T) {
		env := newTestEnv()
		reminders := new(MockReminderSender)
		reminders.On("SendDueReminders", ctx, 24*time.Hour).Return(3, nil)
		jobs := NewJobs(env.svc, nil, reminders, nil, nil, zap.NewNop())

		n, err := jobs.SendAppointmentReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("configured windows override the defaults", func(t *testing.T) {
		env := newTestEnv()
		reminders := new(MockReminderSender)
		reminders.On("SendDueReminders", ctx, 48*time.Hour).Return(0, nil)
		jobs := NewJobs(env.svc, nil, reminders, nil, nil, zap.NewNop())
		jobs.SetWindows(0, 48*time.Hour)

		_, err := jobs.SendAppointmentReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, QuoteExpiryWindow, jobs.quoteWindow)
		reminders.AssertExpectations(t)
	})

	t.Run("low stock digest", func(t *testing.T) {
		env := newTestEnv()
		floor := decimal.NewFromInt(5)
		stock := fixedStock{
			{Name: "Planche de noyer", SKU: "BOIS-0001", StockQty: decimal.NewFromInt(2), StockMin: &floor},
			{Name: "Vernis mat", SKU: "FOUR-0003", StockQty: decimal.Zero, StockMin: &floor},
		}
		jobs := NewJobs(env.svc, nil, nil, stock, nil, zap.NewNop())

		n, err := jobs.LowStockDigest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, env.repo.items, 2)
		assert.Equal(t, "2 article(s) en stock bas", env.repo.items[0].Title)
		assert.Contains(t, *env.repo.items[0].Message, "Planche de noyer (BOIS-0001) : 2 / min 5")

		empty := NewJobs(env.svc, nil, nil, fixedStock{}, nil, zap.NewNop())
		n, err = empty.LowStockDigest(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("expire web quote requests", func(t *testing.T) {
		env := newTestEnv()
		expirer := &countingExpirer{}
		jobs := NewJobs(env.svc, nil, nil, nil, expirer, zap.NewNop())

		n, err := jobs.ExpireQuoteRequests(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 1, expirer.calls)
	})
}

func TestEventHandler(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	h := NewEventHandler(env.svc, zap.NewNop())

	assert.Contains(t, h.EventTypes(), shop.EventTypeOrderPlaced)
	assert.Contains(t, h.EventTypes(), webquote.EventTypeQuoteRequested)

	orderID := uuid.New()
	require.NoError(t, h.Handle(ctx, &shop.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(shop.EventTypeOrderPlaced, shop.AggregateTypeOrder, orderID),
		OrderID:         orderID,
		Number:          "ORD-2025-0042",
		CustomerName:    "Amina El Fassi",
		Total:           decimal.NewFromInt(2400),
	}))
	require.Len(t, env.repo.items, 2)
	n := env.repo.items[0]
	assert.Equal(t, notification.TypeNewOrder, n.Type)
	assert.Equal(t, "Nouvelle commande ORD-2025-0042", n.Title)
	assert.Equal(t, "/admin/orders/"+orderID.String(), *n.Link)

	docID := uuid.New()
	require.NoError(t, h.Handle(ctx, &document.PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypePaymentRecorded, document.AggregateTypeDocument, docID),
		DocumentSummary: document.DocumentSummary{DocumentID: docID, Number: "FA-2025-0007", ClientName: "Dar Sultan"},
		Amount:          decimal.NewFromInt(1000),
		Status:          document.StatusPaid,
	}))
	paid := env.repo.items[2]
	assert.Equal(t, notification.TypePaymentReceived, paid.Type)
	assert.Equal(t, "Facture FA-2025-0007 payée", paid.Title)
	assert.Equal(t, true, paid.Metadata["isPaidInFull"])

	itemID := uuid.New()
	require.NoError(t, h.Handle(ctx, &catalog.StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(catalog.EventTypeStockBelowMinimum, catalog.AggregateTypeItem, itemID),
		ItemID:          itemID,
		SKU:             "BOIS-0001",
		Name:            "Planche de noyer",
		StockQty:        decimal.NewFromInt(1),
		StockMin:        decimal.NewFromInt(5),
	}))
	assert.Equal(t, notification.TypeLowStock, env.repo.items[4].Type)

	before := len(env.repo.items)
	unrelated := shared.NewBaseDomainEvent("Unrelated", "X", uuid.New())
	require.NoError(t, h.Handle(ctx, &unrelated))
	assert.Len(t, env.repo.items, before)
}
