package cache

import (
	"context"
	"sync"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
)

// InMemoryThrottle is a sliding-window log kept in process memory.
// Quotas are per instance.
type InMemoryThrottle struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewInMemoryThrottle creates an empty throttle
func NewInMemoryThrottle() *InMemoryThrottle {
	return &InMemoryThrottle{hits: make(map[string][]time.Time), now: time.Now}
}

// Allow records a hit for key unless limit hits already fall inside window
func (t *InMemoryThrottle) Allow(_ context.Context, key string, limit int, window time.Duration) (publicform.Decision, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cutoff := now.Add(-window)
	kept := t.hits[key][:0]
	for _, at := range t.hits[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= limit {
		t.hits[key] = kept
		return publicform.Decision{RetryAfter: kept[0].Add(window).Sub(now)}, nil
	}
	kept = append(kept, now)
	t.hits[key] = kept
	return publicform.Decision{Allowed: true, Remaining: limit - len(kept)}, nil
}

// Sweep drops keys with no hit inside window
func (t *InMemoryThrottle) Sweep(window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-window)
	for key, hits := range t.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(t.hits, key)
		}
	}
}

var _ publicform.Throttle = (*InMemoryThrottle)(nil)
