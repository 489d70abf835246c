package webquote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	appcrm "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 4, 14, 10, 0, 0, 0, time.UTC)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MockLeadCreator is a mock implementation of LeadCreator
type MockLeadCreator struct {
	mock.Mock
}

func (m *MockLeadCreator) Create(ctx context.Context, req appcrm.LeadRequest, actor *uuid.UUID) (*appcrm.LeadResponse, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcrm.LeadResponse), args.Error(1)
}

// MockThrottle is a mock implementation of publicform.Throttle
type MockThrottle struct {
	mock.Mock
}

func (m *MockThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (publicform.Decision, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Get(0).(publicform.Decision), args.Error(1)
}

// tagStripper removes anything between angle brackets
type tagStripper struct{}

func (tagStripper) Line(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (s tagStripper) Block(v string) string { return s.Line(v) }

type memoryQuotes struct {
	mu      sync.Mutex
	quotes  map[uuid.UUID]*webquote.QuoteRequest
	saveErr error
}

func newMemoryQuotes() *memoryQuotes {
	return &memoryQuotes{quotes: make(map[uuid.UUID]*webquote.QuoteRequest)}
}

func (r *memoryQuotes) FindByID(_ context.Context, id uuid.UUID) (*webquote.QuoteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return q, nil
}

func (r *memoryQuotes) FindAll(_ context.Context, f webquote.Filter) ([]webquote.QuoteRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []webquote.QuoteRequest
	for _, q := range r.quotes {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if f.DateTo != nil && q.CreatedAt.After(*f.DateTo) {
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, int64(len(out)), nil
}

func (r *memoryQuotes) CountByStatus(_ context.Context) ([]webquote.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[webquote.Status]int64{}
	for _, q := range r.quotes {
		counts[q.Status]++
	}
	var out []webquote.StatusCount
	for s, c := range counts {
		out = append(out, webquote.StatusCount{Status: s, Count: c})
	}
	return out, nil
}

func (r *memoryQuotes) FindQuotedBefore(_ context.Context, t time.Time) ([]webquote.QuoteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []webquote.QuoteRequest
	for _, q := range r.quotes {
		if q.Status == webquote.StatusQuoted && q.ValidUntil != nil && q.ValidUntil.Before(t) {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *memoryQuotes) Save(_ context.Context, q *webquote.QuoteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.quotes[q.ID] = q
	return nil
}

func (r *memoryQuotes) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.quotes, id)
	return nil
}

type memoryAudits struct {
	mu      sync.Mutex
	entries []*audit.Log
}

func (r *memoryAudits) Save(_ context.Context, entry *audit.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAudits) Search(_ context.Context, _ audit.Filter) ([]audit.Log, int64, error) {
	return nil, 0, nil
}

func (r *memoryAudits) CountByAction(_ context.Context, _ audit.Filter) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *memoryAudits) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type memorySequences struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (s *memorySequences) Increment(_ context.Context, t sequence.Type, year int) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%d", t, year)
	previous := s.counters[key]
	s.counters[key] = previous + 1
	return previous, previous + 1, nil
}

func (s *memorySequences) Current(_ context.Context, t sequence.Type, year int) (*sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.counters[fmt.Sprintf("%s/%d", t, year)]
	if !ok {
		return nil, shared.NotFound("counter not found")
	}
	return &sequence.Counter{Type: t, Year: year, LastNumber: n}, nil
}

func (s *memorySequences) List(_ context.Context) ([]sequence.Counter, error) {
	return nil, nil
}

type testEnv struct {
	svc       *QuoteService
	quotes    *memoryQuotes
	audits    *memoryAudits
	sequences *memorySequences
	throttle  *MockThrottle
	leads     *MockLeadCreator
}

func newTestEnv() *testEnv {
	env := &testEnv{
		quotes:    newMemoryQuotes(),
		audits:    &memoryAudits{},
		sequences: &memorySequences{counters: map[string]int64{}},
		throttle:  new(MockThrottle),
		leads:     new(MockLeadCreator),
	}
	guard := publicform.NewGuard(env.throttle, tagStripper{}, publicform.DefaultConfig(), zap.NewNop())
	guard.SetClock(func() time.Time { return testNow })
	scope := &NoOpTransactionScope{Quotes: env.quotes, Sequences: env.sequences}
	env.svc = NewQuoteService(env.quotes, env.audits, scope, guard, env.leads, zap.NewNop())
	env.svc.SetClock(func() time.Time { return testNow })
	return env
}

func (e *testEnv) allowAll() {
	e.throttle.On("Allow", mock.Anything, mock.Anything, 5, time.Hour).
		Return(publicform.Decision{Allowed: true, Remaining: 4}, nil)
}
