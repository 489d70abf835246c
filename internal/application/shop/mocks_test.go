package shop

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 18, 11, 0, 0, 0, time.UTC)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

// MockOrderNotifier is a mock implementation of OrderNotifier
type MockOrderNotifier struct {
	mock.Mock
}

func (m *MockOrderNotifier) OrderPlaced(ctx context.Context, o *shop.Order) error {
	return m.Called(ctx, o).Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.EventType()
	}
	return out
}

// memoryItems serves the catalog lookups the shop needs
type memoryItems struct {
	catalog.ItemRepository
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Item
}

func (r *memoryItems) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return it, nil
}

// FindByIDs returns copies, like a database read would
func (r *memoryItems) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Item
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memoryItems) Save(_ context.Context, it *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	return nil
}

type memoryMovements struct {
	mu        sync.Mutex
	movements []catalog.StockMovement
}

func (r *memoryMovements) Save(_ context.Context, m *catalog.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memoryMovements) FindByItem(_ context.Context, _ uuid.UUID, _ int) ([]catalog.StockMovement, error) {
	return nil, nil
}

func (r *memoryMovements) FindRecent(_ context.Context, _ int) ([]catalog.StockMovement, error) {
	return nil, nil
}

type memoryOrders struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*shop.Order
	saves   int
	saveErr error
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: make(map[uuid.UUID]*shop.Order)}
}

func (r *memoryOrders) find(match func(o *shop.Order) bool) (*shop.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if match(o) {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrders) FindByID(_ context.Context, id uuid.UUID) (*shop.Order, error) {
	return r.find(func(o *shop.Order) bool { return o.ID == id })
}

func (r *memoryOrders) FindByNumber(_ context.Context, number string) (*shop.Order, error) {
	return r.find(func(o *shop.Order) bool { return o.Number == number })
}

func (r *memoryOrders) FindForTracking(_ context.Context, number, email string) (*shop.Order, error) {
	return r.find(func(o *shop.Order) bool {
		return strings.EqualFold(o.Number, number) && strings.EqualFold(o.CustomerEmail, email)
	})
}

func (r *memoryOrders) FindByCheckoutSession(_ context.Context, sessionID string) (*shop.Order, error) {
	return r.find(func(o *shop.Order) bool { return o.CheckoutSession != nil && *o.CheckoutSession == sessionID })
}

func (r *memoryOrders) FindByPaymentIntent(_ context.Context, pi string) (*shop.Order, error) {
	return r.find(func(o *shop.Order) bool { return o.PaymentIntent != nil && *o.PaymentIntent == pi })
}

func (r *memoryOrders) FindAll(_ context.Context, f shop.Filter) ([]shop.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shop.Order
	for _, o := range r.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, int64(len(out)), nil
}

func (r *memoryOrders) Stats(_ context.Context, _ time.Time) (shop.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := shop.Stats{TotalOrders: int64(len(r.orders))}
	for _, o := range r.orders {
		if o.Status == shop.StatusPending {
			s.PendingOrders++
		}
		if o.PaymentStatus == shop.PaymentPaid {
			s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		}
	}
	return s, nil
}

func (r *memoryOrders) ItemInUse(_ context.Context, itemID uuid.UUID) (bool, error) {
	_, err := r.find(func(o *shop.Order) bool {
		for _, it := range o.Items {
			if it.CatalogItemID == itemID {
				return true
			}
		}
		return false
	})
	return err == nil, nil
}

func (r *memoryOrders) Save(_ context.Context, o *shop.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[o.ID] = o
	r.saves++
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
	counters map[string]*sequence.Counter
}

func (s *memorySequences) Increment(_ context.Context, t sequence.Type, year int) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%d", t, year)
	c, ok := s.counters[key]
	if !ok {
		c = &sequence.Counter{Type: t, Year: year}
		s.counters[key] = c
	}
	previous := c.LastNumber
	c.LastNumber++
	return previous, c.LastNumber, nil
}

func (s *memorySequences) Current(_ context.Context, t sequence.Type, year int) (*sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[fmt.Sprintf("%s/%d", t, year)]
	if !ok {
		return nil, shared.NotFound("counter not found")
	}
	cp := *c
	return &cp, nil
}

func (s *memorySequences) List(_ context.Context) ([]sequence.Counter, error) {
	return nil, nil
}

type memoryIdempotency struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *memoryIdempotency) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[id] {
		return false, nil
	}
	s.seen[id] = true
	return true, nil
}

func (s *memoryIdempotency) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[id], nil
}

func (s *memoryIdempotency) Release(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	return nil
}

func (s *memoryIdempotency) Close() error { return nil }

type testEnv struct {
	items     *memoryItems
	movements *memoryMovements
	orders    *memoryOrders
	audits    *memoryAudits
	seq       *memorySequences
	idem      *memoryIdempotency
	publisher *MockEventPublisher
	gateway   *MockPaymentGateway
	notifier  *MockOrderNotifier

	orderSvc    *OrderService
	checkoutSvc *CheckoutService
	webhookSvc  *WebhookService
}

const testWebhookSecret = "whsec_test_secret"

func newTestEnv(items ...*catalog.Item) *testEnv {
	env := &testEnv{
		items:     &memoryItems{items: make(map[uuid.UUID]*catalog.Item)},
		movements: &memoryMovements{},
		orders:    newMemoryOrders(),
		audits:    &memoryAudits{},
		seq:       &memorySequences{counters: make(map[string]*sequence.Counter)},
		idem:      &memoryIdempotency{seen: make(map[string]bool)},
		publisher: &MockEventPublisher{},
		gateway:   new(MockPaymentGateway),
		notifier:  new(MockOrderNotifier),
	}
	for _, it := range items {
		env.items.items[it.ID] = it
	}
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }
	scope := &NoOpTransactionScope{
		Orders:    env.orders,
		Items:     env.items,
		Movements: env.movements,
		Sequences: env.seq,
		Audits:    env.audits,
	}

	env.orderSvc = NewOrderService(env.orders, scope, logger)
	env.orderSvc.SetClock(clock)
	env.orderSvc.SetEventPublisher(env.publisher)
	env.orderSvc.SetNotifier(env.notifier)

	env.checkoutSvc = NewCheckoutService(env.orders, env.gateway, env.audits, logger)
	env.checkoutSvc.SetClock(clock)
	env.checkoutSvc.SetEventPublisher(env.publisher)

	env.webhookSvc = NewWebhookService(WebhookServiceConfig{
		OrderRepo:     env.orders,
		AuditRepo:     env.audits,
		Idempotency:   env.idem,
		WebhookSecret: testWebhookSecret,
		Logger:        logger,
	})
	env.webhookSvc.SetClock(clock)
	env.webhookSvc.SetEventPublisher(env.publisher)
	return env
}
