package sequence

import (
	"context"
	"errors"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

const (
	maxAttempts = 3
	retryDelay  = 50 * time.Millisecond
)

// Counter is the persisted state of one counter
type Counter struct {
	Type       Type      `json:"type"`
	Year       int       `json:"year"`
	LastNumber int64     `json:"lastNumber"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store persists counters. Increment must be atomic: it returns the value
// before and after the increment, or ErrSequenceConflict when another
// writer moved the counter concurrently.
type Store interface {
	Increment(ctx context.Context, t Type, year int) (previous, next int64, err error)
	Current(ctx context.Context, t Type, year int) (*Counter, error)
	List(ctx context.Context) ([]Counter, error)
}

// GapReporter is told when a counter jumped over one or more values
type GapReporter interface {
	ReportGap(ctx context.Context, t Type, year int, previous, next int64)
}

// Generator hands out official numbers
type Generator struct {
	store  Store
	gaps   GapReporter
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	isDupe func(error) bool
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithGapReporter registers the gap reporter
func WithGapReporter(r GapReporter) GeneratorOption {
	return func(g *Generator) { g.gaps = r }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithDuplicateDetector marks store errors (unique violations) as retryable
func WithDuplicateDetector(fn func(error) bool) GeneratorOption {
	return func(g *Generator) { g.isDupe = fn }
}

// NewGenerator creates a number generator over a store
func NewGenerator(store Store, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:  store,
		now:    time.Now,
		sleep:  sleepCtx,
		isDupe: func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next consumes and returns the next official number of type t
func (g *Generator) Next(ctx context.Context, t Type) (string, error) {
	year, err := CounterYear(t, g.now())
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		previous, next, err := g.store.Increment(ctx, t, year)
		if err == nil {
			if g.gaps != nil && previous != next-1 {
				g.gaps.ReportGap(ctx, t, year, previous, next)
			}
			return Format(t, year, next)
		}

		lastErr = err
		if !errors.Is(err, ErrSequenceConflict) && !g.isDupe(err) {
			return "", err
		}
		if attempt < maxAttempts {
			if err := g.sleep(ctx, retryDelay*time.Duration(attempt)); err != nil {
				return "", err
			}
		}
	}

	return "", shared.NewDomainErrorf(CodeMaxRetriesExceeded,
		"Impossible de générer un numéro %s après %d tentatives: %v", t, maxAttempts, lastErr)
}

// Preview returns the number Next would produce, without consuming it
func (g *Generator) Preview(ctx context.Context, t Type) (string, error) {
	year, err := CounterYear(t, g.now())
	if err != nil {
		return "", err
	}
	counter, err := g.store.Current(ctx, t, year)
	if err != nil && !shared.IsNotFound(err) {
		return "", err
	}
	var last int64
	if counter != nil {
		last = counter.LastNumber
	}
	return Format(t, year, last+1)
}

// Current returns the last number consumed for the current period
func (g *Generator) Current(ctx context.Context, t Type) (int64, error) {
	year, err := CounterYear(t, g.now())
	if err != nil {
		return 0, err
	}
	counter, err := g.store.Current(ctx, t, year)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return counter.LastNumber, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
