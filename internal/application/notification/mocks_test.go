package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	appdocument "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)

type memoryNotifications struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (r *memoryNotifications) CreateMany(_ context.Context, ns []notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, ns...)
	return nil
}

func (r *memoryNotifications) FindForUser(_ context.Context, userID uuid.UUID, f notification.Filter) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notification
	for _, n := range r.items {
		if n.UserID != userID || (f.UnreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memoryNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *memoryNotifications) update(userID uuid.UUID, match func(notification.Notification) bool, at time.Time) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read && match(r.items[i]) {
			r.items[i].Read = true
			r.items[i].ReadAt = &at
			n++
		}
	}
	return n
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *memoryNotifications) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	return r.update(userID, func(n notification.Notification) bool { return contains(ids, n.ID) }, at), nil
}

func (r *memoryNotifications) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return r.update(userID, func(notification.Notification) bool { return true }, at), nil
}

func (r *memoryNotifications) remove(userID uuid.UUID, match func(notification.Notification) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && match(it) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	r.items = kept
	return n
}

func (r *memoryNotifications) Delete(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return r.remove(userID, func(n notification.Notification) bool { return contains(ids, n.ID) }), nil
}

func (r *memoryNotifications) DeleteRead(_ context.Context, userID uuid.UUID) (int64, error) {
	return r.remove(userID, func(n notification.Notification) bool { return n.Read }), nil
}

type staticRecipients []uuid.UUID

func (s staticRecipients) NotificationRecipients(context.Context) ([]uuid.UUID, error) {
	return s, nil
}

// MockAdminEmailer is a mock implementation of AdminEmailer
type MockAdminEmailer struct {
	mock.Mock
}

func (m *MockAdminEmailer) NotifyAdmins(ctx context.Context, a Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type switchPrefs bool

func (p switchPrefs) EmailEnabledFor(context.Context, notification.Type) bool { return bool(p) }

// MockInvoiceSweeper is a mock implementation of InvoiceSweeper
type MockInvoiceSweeper struct {
	mock.Mock
}

func (m *MockInvoiceSweeper) MarkOverdueInvoices(ctx context.Context) ([]appdocument.DocumentListItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]appdocument.DocumentListItem), args.Error(1)
}

func (m *MockInvoiceSweeper) ExpiringQuotes(ctx context.Context, within time.Duration) ([]appdocument.DocumentListItem, error) {
	args := m.Called(ctx, within)
	return args.Get(0).([]appdocument.DocumentListItem), args.Error(1)
}

// MockReminderSender is a mock implementation of ReminderSender
type MockReminderSender struct {
	mock.Mock
}

func (m *MockReminderSender) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	args := m.Called(ctx, window)
	return args.Int(0), args.Error(1)
}

type fixedStock []catalog.Item

func (s fixedStock) LowStock(context.Context) ([]catalog.Item, error) { return s, nil }

type countingExpirer struct{ calls int }

func (c *countingExpirer) ExpireDue(context.Context) (int, error) {
	c.calls++
	return 2, nil
}

type testEnv struct {
	svc     *NotificationService
	repo    *memoryNotifications
	admins  staticRecipients
	emailer *MockAdminEmailer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:    &memoryNotifications{},
		admins:  staticRecipients{uuid.New(), uuid.New()},
		emailer: new(MockAdminEmailer),
	}
	env.svc = NewNotificationService(env.repo, env.admins, zap.NewNop())
	env.svc.SetClock(func() time.Time { return testNow })
	return env
}
