package report

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached reports whenever the figures they are built
// from change
type CacheInvalidator struct {
	service *ReportService
	logger  *zap.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator
func NewCacheInvalidator(service *ReportService, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{service: service, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		document.EventTypeDocumentCreated,
		document.EventTypeDocumentUpdated,
		document.EventTypeDocumentDeleted,
		document.EventTypeDocumentIssued,
		document.EventTypeDocumentStatusChanged,
		document.EventTypeDocumentConverted,
		document.EventTypePaymentRecorded,
		document.EventTypePaymentDeleted,
		shop.EventTypeOrderPlaced,
		shop.EventTypeOrderPaid,
		shop.EventTypeOrderStatusChanged,
		crm.EventTypeLeadCreated,
		crm.EventTypeLeadStatusChanged,
		crm.EventTypeLeadConverted,
		crm.EventTypeClientCreated,
		crm.EventTypeProjectCreated,
		crm.EventTypeProjectStatusChanged,
	}
}

// Handle invalidates the report cache. A failure is logged and swallowed:
// stale entries still expire on their TTL.
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.service.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate report cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)
