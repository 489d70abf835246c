package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryReportCache is the single-instance report cache. Entries are kept
// as JSON so callers never share a mutable value with the cache.
type InMemoryReportCache struct {
	entries sync.Map // map[string]*cacheEntry
	logger  *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryReportCache creates the cache and starts its cleanup loop
func NewInMemoryReportCache(logger *zap.Logger) *InMemoryReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryReportCache{
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Get loads a cached report into dst and reports whether it was found
func (c *InMemoryReportCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			atomic.AddInt64(&c.hits, 1)
			if err := json.Unmarshal(entry.data, dst); err != nil {
				return false, fmt.Errorf("failed to decode cached report: %w", err)
			}
			return true, nil
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return false, nil
}

// Set stores a report for ttl
func (c *InMemoryReportCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	c.entries.Store(key, &cacheEntry{data: data, expiresAt: c.now().Add(ttl)})
	return nil
}

// InvalidateAll drops every cached report
func (c *InMemoryReportCache) InvalidateAll(context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	c.logger.Debug("invalidated in-memory report cache")
	return nil
}

// Stats returns the hit and miss counters
func (c *InMemoryReportCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired ones included
func (c *InMemoryReportCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the cleanup loop
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryReportCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryReportCache) doCleanup() {
	removed := 0
	now := c.now()
	c.entries.Range(func(key, value any) bool {
		if !now.Before(value.(*cacheEntry).expiresAt) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("cleaned up expired report cache entries", zap.Int("removed", removed))
	}
}
