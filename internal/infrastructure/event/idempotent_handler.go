package event

import (
	"context"
	"sync/atomic"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStats counts what an idempotent handler did
type IdempotencyStats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// IdempotentHandler runs the wrapped handler at most once per event ID.
// Keys are namespaced per handler so two wrapped handlers never hide each
// other's deliveries.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	prefix  string
	logger  *zap.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the TTL and the enabled flag
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// NewIdempotentHandler wraps handler. name namespaces the keys in store.
func NewIdempotentHandler(name string, handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		prefix:  "event:" + name + ":",
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle marks the event then delegates. A store error lets the event
// through: a duplicate mail is better than a lost one.
func (h *IdempotentHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, e)
	}

	key := h.prefix + e.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("idempotency check failed, handling anyway",
			zap.String("event_id", e.EventID().String()),
			zap.String("event_type", e.EventType()),
			zap.Error(err))
	case !isNew:
		h.duplicates.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", e.EventID().String()),
			zap.String("event_type", e.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, e); err != nil {
		h.failed.Add(1)
		if isNew {
			if relErr := h.store.Release(ctx, key); relErr != nil {
				h.logger.Warn("idempotency key not released",
					zap.String("event_id", e.EventID().String()),
					zap.Error(relErr))
			}
		}
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed:  h.processed.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
