// Package event dispatches domain events raised by the services to the
// handlers that keep audit, notifications, report caches and metrics in sync.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

type subscription struct {
	handler shared.EventHandler
	async   bool
}

// SubscribeOption tunes one subscription
type SubscribeOption func(*subscription)

// Async dispatches to the handler in a background goroutine, on a context
// detached from the request. Use it for handlers that send mail.
func Async() SubscribeOption {
	return func(s *subscription) { s.async = true }
}

// InMemoryEventBus delivers events to subscribers inside the process.
// A handler subscribed without event types receives every event.
type InMemoryEventBus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	byType   map[string][]*subscription
	wildcard []*subscription

	running  atomic.Bool
	failures atomic.Int64
	inflight sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		logger: logger,
		byType: make(map[string][]*subscription),
	}
}

// Subscribe registers a handler for the given event types, or for the
// handler's own EventTypes when none are passed
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	b.SubscribeWith(handler, eventTypes)
}

// SubscribeWith is Subscribe with options
func (b *InMemoryEventBus) SubscribeWith(handler shared.EventHandler, eventTypes []string, opts ...SubscribeOption) {
	sub := &subscription{handler: handler}
	for _, opt := range opts {
		opt(sub)
	}
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, sub)
	}
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], sub)
	}
	b.mu.Unlock()

	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
		zap.Bool("async", sub.async),
	)
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = without(b.wildcard, handler)
	for t, subs := range b.byType {
		if subs = without(subs, handler); len(subs) == 0 {
			delete(b.byType, t)
		} else {
			b.byType[t] = subs
		}
	}
}

func without(subs []*subscription, handler shared.EventHandler) []*subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.handler != handler {
			out = append(out, s)
		}
	}
	return out
}

func (b *InMemoryEventBus) subscribers(eventType string) []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*subscription, 0, len(b.byType[eventType])+len(b.wildcard))
	out = append(out, b.byType[eventType]...)
	return append(out, b.wildcard...)
}

// Publish hands the events to their subscribers. Synchronous handlers run
// before Publish returns. Handler failures are logged and counted, never
// returned: the business operation that raised the event already committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		for _, sub := range b.subscribers(e.EventType()) {
			if !sub.async {
				b.dispatch(ctx, sub.handler, e)
				continue
			}
			b.inflight.Add(1)
			go func(h shared.EventHandler, e shared.DomainEvent) {
				defer b.inflight.Done()
				b.dispatch(context.WithoutCancel(ctx), h, e)
			}(sub.handler, e)
		}
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, e shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.failures.Add(1)
			b.logger.Error("event handler panicked",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := handler.Handle(ctx, e); err != nil {
		b.failures.Add(1)
		b.logger.Error("event handler failed",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.Error(err),
		)
	}
}

// Failures returns how many handler calls failed or panicked
func (b *InMemoryEventBus) Failures() int64 {
	return b.failures.Load()
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop waits for asynchronous handlers to finish, or for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped", zap.Int64("handler_failures", b.failures.Load()))
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped with handlers still running")
		return ctx.Err()
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
