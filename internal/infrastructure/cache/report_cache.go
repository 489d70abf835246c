package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultScanBatchSize = 100
	reportKeyPrefix      = "report:"
)

// RedisReportCache keeps computed reports in Redis as JSON so every instance
// serves the same figures
type RedisReportCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisReportCache creates a report cache on a shared client. The caller
// keeps ownership of the client.
func NewRedisReportCache(client *redis.Client, logger *zap.Logger) *RedisReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisReportCache{client: client, prefix: reportKeyPrefix, logger: logger}
}

func (c *RedisReportCache) cacheKey(key string) string {
	return c.prefix + key
}

// Get loads a cached report into dst and reports whether it was found
func (c *RedisReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	cacheKey := c.cacheKey(key)
	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("report cache miss", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report from cache: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("dropping corrupted report cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return false, nil
	}
	c.logger.Debug("report cache hit", zap.String("key", key))
	return true, nil
}

// Set stores a report for ttl
func (c *RedisReportCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached report
func (c *RedisReportCache) InvalidateAll(ctx context.Context) error {
	// SCAN rather than KEYS so a large keyspace does not block Redis
	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan report keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete report keys: %w", err)
			}
			deleted += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	c.logger.Info("invalidated report cache", zap.Int64("deleted_count", deleted))
	return nil
}
