// Package testutil holds helpers shared by the back office test suites.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// EventRecorder captures domain events. It can stand in for the event bus
// (Publish) or be subscribed to it as a handler (Handle).
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
}

// NewEventRecorder creates a recorder for the given event types.
// With no types it accepts everything it is handed.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

// EventTypes returns the event types this recorder subscribes to
func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

// Handle records one event
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// Publish records events synchronously
func (r *EventRecorder) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if err := r.Handle(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Events returns a copy of everything recorded so far
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns the number of recorded events
func (r *EventRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Types lists the recorded event types in order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

// Has reports whether an event of the given type was recorded
func (r *EventRecorder) Has(eventType string) bool {
	for _, t := range r.Types() {
		if t == eventType {
			return true
		}
	}
	return false
}

// SetError makes Handle and Publish fail with err
func (r *EventRecorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Reset clears the recorded events and the error
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.err = nil
}

// TestEvent is a bare domain event
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates a test event on a random aggregate
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test-data",
	}
}

// WaitForCondition polls condition until it holds or timeout expires
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount waits until the recorder holds at least count events
func WaitForEventCount(t *testing.T, r *EventRecorder, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return r.Count() >= count
	}, timeout, 10*time.Millisecond)
}
