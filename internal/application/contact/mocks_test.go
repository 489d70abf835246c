package contact

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MockReplyMailer is a mock implementation of ReplyMailer
type MockReplyMailer struct {
	mock.Mock
}

func (m *MockReplyMailer) SendReply(ctx context.Context, original, reply *contact.Message) error {
	args := m.Called(ctx, original, reply)
	return args.Error(0)
}

// MockThrottle is a mock implementation of publicform.Throttle
type MockThrottle struct {
	mock.Mock
}

func (m *MockThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (publicform.Decision, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Get(0).(publicform.Decision), args.Error(1)
}

type spaceSanitizer struct{}

func (spaceSanitizer) Line(s string) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "<b>", ""), "</b>", "")
	return strings.Join(strings.Fields(s), " ")
}

func (spaceSanitizer) Block(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "<b>", ""), "</b>", ""))
}

type memoryMessages struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*contact.Message
	saves    int
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{messages: make(map[uuid.UUID]*contact.Message)}
}

func (r *memoryMessages) FindByID(_ context.Context, id uuid.UUID) (*contact.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryMessages) FindAll(_ context.Context, f contact.Filter) ([]contact.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []contact.Message
	for _, m := range r.messages {
		if f.Archived != nil && m.Archived != *f.Archived {
			continue
		}
		if f.Read != nil && m.Read != *f.Read {
			continue
		}
		if f.Direction != "" && m.Direction != f.Direction {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *memoryMessages) FindReplies(_ context.Context, id uuid.UUID) ([]contact.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []contact.Message
	for _, m := range r.messages {
		if m.InReplyToID != nil && *m.InReplyToID == id {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memoryMessages) Counters(_ context.Context) (contact.Counters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c contact.Counters
	for _, m := range r.messages {
		if m.Direction != contact.Received {
			continue
		}
		if !m.Read && !m.Archived {
			c.Unread++
		}
		if m.Starred {
			c.Starred++
		}
		if m.Archived {
			c.Archived++
		}
	}
	return c, nil
}

func (r *memoryMessages) Save(_ context.Context, m *contact.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.messages[m.ID] = m
	return nil
}

func (r *memoryMessages) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.messages, id)
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

type testEnv struct {
	svc      *MessageService
	messages *memoryMessages
	audits   *memoryAudits
	throttle *MockThrottle
	mailer   *MockReplyMailer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		messages: newMemoryMessages(),
		audits:   &memoryAudits{},
		throttle: new(MockThrottle),
		mailer:   new(MockReplyMailer),
	}
	guard := publicform.NewGuard(env.throttle, spaceSanitizer{}, publicform.DefaultConfig(), zap.NewNop())
	guard.SetClock(func() time.Time { return testNow })
	env.svc = NewMessageService(env.messages, env.audits, guard, env.mailer,
		Sender{Email: "contact@letatchebois.com", Name: "Le Tatche Bois"}, zap.NewNop())
	env.svc.SetClock(func() time.Time { return testNow })
	return env
}

func (e *testEnv) allowAll() {
	e.throttle.On("Allow", mock.Anything, mock.Anything, 5, time.Hour).
		Return(publicform.Decision{Allowed: true, Remaining: 4}, nil)
}
