package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of work already done: Stripe event IDs and
// per-handler event deliveries.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl and reports false when it was
	// already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release forgets key so the work can run again.
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig turns deduplication on and sets how long keys are kept.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for three days, the span over which
// Stripe retries a webhook delivery.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 72 * time.Hour, Enabled: true}
}
