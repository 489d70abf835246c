package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	reportapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the Redis backed stores, or their in-memory variants when
// Redis is disabled or unreachable
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
	connected             bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a factory and connects to Redis when enabled
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) (*Factory, error) {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.logger.Info("redis disabled, using in-memory stores")
		return f, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Webhook deduplication and form quotas will not be shared across instances.",
			zap.Error(err),
		)
		return f, nil
	}

	f.client = client
	f.connected = true
	return f, nil
}

// Client returns the shared Redis client, nil when running in memory
func (f *Factory) Client() *redis.Client {
	return f.client
}

// IdempotencyStore returns the store used to process each webhook event once
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	if f.connected {
		return NewRedisIdempotencyStoreWithClient(f.client, "")
	}
	return NewInMemoryIdempotencyStore()
}

// Throttle returns the counter behind public form quotas
func (f *Factory) Throttle() publicform.Throttle {
	if f.connected {
		return NewRedisThrottle(f.client, "")
	}
	return NewInMemoryThrottle()
}

// TokenBlacklist returns the store of revoked sessions
func (f *Factory) TokenBlacklist() auth.TokenBlacklist {
	if f.connected {
		return auth.NewRedisTokenBlacklist(f.client)
	}
	return auth.NewInMemoryTokenBlacklist()
}

// ReportCache returns the store of computed reports
func (f *Factory) ReportCache() reportapp.Cache {
	if f.connected {
		return NewRedisReportCache(f.client, f.logger)
	}
	return NewInMemoryReportCache(f.logger)
}

// Close releases the Redis connection
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
