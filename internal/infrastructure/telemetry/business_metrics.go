// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks storefront orders, document flow, payments and
// stock health. It listens on the event bus for the counters and polls a
// GaugeSource for the point-in-time values.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	ordersPlacedTotal   *Counter
	orderAmountTotal    *Counter
	documentsIssued     *Counter
	paymentsTotal       *Counter
	paymentAmountTotal  *Counter
	quoteRequestsTotal  *Counter
	contactMessageTotal *Counter

	// Gauge metrics (point-in-time values)
	lowStockItems    *Gauge
	overdueInvoices  *Gauge
	outstandingTotal *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	gauges GaugeSource
}

// GaugeSource provides the values sampled by the periodic collector.
type GaugeSource interface {
	// LowStockCount returns how many tracked items sit at or below their minimum
	LowStockCount(ctx context.Context) (int64, error)
	// OverdueInvoices returns the count and the unpaid balance of overdue invoices
	OverdueInvoices(ctx context.Context) (int64, decimal.Decimal, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	Gauges          GaugeSource
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		gauges:   cfg.Gauges,
	}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.ordersPlacedTotal, "ltb_shop_orders_placed_total", "Total number of storefront orders placed", "{orders}"},
		{&bm.orderAmountTotal, "ltb_shop_order_amount_total", "Total storefront order amount in centimes", "{centimes}"},
		{&bm.documentsIssued, "ltb_documents_issued_total", "Total number of commercial documents issued", "{documents}"},
		{&bm.paymentsTotal, "ltb_payments_total", "Total number of invoice payments recorded", "{payments}"},
		{&bm.paymentAmountTotal, "ltb_payment_amount_total", "Total invoice payments in centimes", "{centimes}"},
		{&bm.quoteRequestsTotal, "ltb_quote_requests_total", "Total number of quote requests received", "{requests}"},
		{&bm.contactMessageTotal, "ltb_contact_messages_total", "Total number of contact messages received", "{messages}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.lowStockItems, err = NewGauge(
		cfg.Meter,
		"ltb_catalog_low_stock_items",
		"Number of tracked items at or below their minimum stock",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueInvoices, err = NewGauge(
		cfg.Meter,
		"ltb_documents_overdue_invoices",
		"Number of overdue invoices",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.outstandingTotal, err = NewFloatGauge(
		cfg.Meter,
		"ltb_documents_overdue_balance",
		"Unpaid balance of overdue invoices in MAD",
		"MAD",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// centimes converts a MAD amount to an integer count of centimes
func centimes(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// RecordOrderPlaced records a storefront order and its amount.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, method shop.PaymentMethod, total decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(string(method))}
	bm.ordersPlacedTotal.Inc(ctx, attrs...)
	if total.IsPositive() {
		bm.orderAmountTotal.Add(ctx, centimes(total), attrs...)
	}
}

// RecordDocumentIssued records a document receiving its definitive number.
func (bm *BusinessMetrics) RecordDocumentIssued(ctx context.Context, docType document.Type) {
	bm.documentsIssued.Inc(ctx, AttrDocumentType.String(string(docType)))
}

// RecordPayment records a payment applied to an invoice.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method document.PaymentMethod, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(string(method))}
	bm.paymentsTotal.Inc(ctx, attrs...)
	if amount.IsPositive() {
		bm.paymentAmountTotal.Add(ctx, centimes(amount), attrs...)
	}
}

// RecordLowStockCount records the current number of low stock items.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockItems.Record(ctx, count)
}

// RecordOverdue records the overdue invoice count and balance.
func (bm *BusinessMetrics) RecordOverdue(ctx context.Context, count int64, balance decimal.Decimal) {
	bm.overdueInvoices.Record(ctx, count)
	bm.outstandingTotal.Record(ctx, balance.InexactFloat64())
}

// EventTypes returns the events feeding the counters.
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		shop.EventTypeOrderPlaced,
		document.EventTypeDocumentIssued,
		document.EventTypePaymentRecorded,
		webquote.EventTypeQuoteRequested,
		contact.EventTypeMessageReceived,
	}
}

// Handle updates the counters from a domain event.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *shop.OrderPlacedEvent:
		bm.RecordOrderPlaced(ctx, e.PaymentMethod, e.Total)
	case *document.DocumentIssuedEvent:
		bm.RecordDocumentIssued(ctx, e.Type)
	case *document.PaymentRecordedEvent:
		bm.RecordPayment(ctx, e.Method, e.Amount)
	default:
		switch event.EventType() {
		case webquote.EventTypeQuoteRequested:
			bm.quoteRequestsTotal.Inc(ctx)
		case contact.EventTypeMessageReceived:
			bm.contactMessageTotal.Inc(ctx)
		}
	}
	return nil
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It samples every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectGauges(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectGauges(ctx)
		}
	}
}

// collectGauges samples the gauge source once.
func (bm *BusinessMetrics) collectGauges(ctx context.Context) {
	if bm.gauges == nil {
		bm.logger.Debug("No gauge source configured, skipping gauge collection")
		return
	}

	lowStock, err := bm.gauges.LowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count low stock items", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStock)
	}

	overdue, balance, err := bm.gauges.OverdueInvoices(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count overdue invoices", zap.Error(err))
	} else {
		bm.RecordOverdue(ctx, overdue, balance)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
