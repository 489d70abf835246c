package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockEventPublisher collects published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.EventType()
	}
	return out
}

// MockDocumentRepository is a mock implementation of document.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, number string) (*document.Document, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter document.ListFilter) ([]document.Document, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]document.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*document.Document, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindDepositInvoices(ctx context.Context, devisID uuid.UUID) ([]*document.Document, error) {
	args := m.Called(ctx, devisID)
	return args.Get(0).([]*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindOverdueCandidates(ctx context.Context, before time.Time) ([]*document.Document, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindExpiringQuotes(ctx context.Context, from, to time.Time) ([]document.Document, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountOfficial(ctx context.Context, t document.Type, year int) (int64, error) {
	args := m.Called(ctx, t, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) ListOfficialNumbers(ctx context.Context, t document.Type, year int) ([]string, error) {
	args := m.Called(ctx, t, year)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) InvoiceTotals(ctx context.Context, clientID uuid.UUID) (document.InvoiceTotals, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(document.InvoiceTotals), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of document.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]document.Payment, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]document.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, from, to time.Time) ([]document.Payment, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]document.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]document.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]document.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *document.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeliveryLogRepository is a mock implementation of document.DeliveryLogRepository
type MockDeliveryLogRepository struct {
	mock.Mock
}

func (m *MockDeliveryLogRepository) Save(ctx context.Context, log *document.DeliveryLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockDeliveryLogRepository) FindByBC(ctx context.Context, bcID uuid.UUID) ([]document.DeliveryLog, error) {
	args := m.Called(ctx, bcID)
	return args.Get(0).([]document.DeliveryLog), args.Error(1)
}

// memoryAuditRepository keeps entries in memory
type memoryAuditRepository struct {
	mu      sync.Mutex
	entries []*audit.Log
}

func (r *memoryAuditRepository) Save(_ context.Context, entry *audit.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepository) Search(_ context.Context, filter audit.Filter) ([]audit.Log, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Log
	for _, e := range r.entries {
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if filter.EntityID != nil && (e.EntityID == nil || *e.EntityID != *filter.EntityID) {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *memoryAuditRepository) CountByAction(_ context.Context, _ audit.Filter) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range r.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (r *memoryAuditRepository) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

// memorySequenceStore is an in-memory counter store
type memorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]*sequence.Counter
	skip     int64
}

func newMemorySequenceStore() *memorySequenceStore {
	return &memorySequenceStore{counters: make(map[string]*sequence.Counter)}
}

func counterKey(t sequence.Type, year int) string {
	return fmt.Sprintf("%s/%d", t, year)
}

func (s *memorySequenceStore) seed(t sequence.Type, year int, last int64) {
	s.counters[counterKey(t, year)] = &sequence.Counter{Type: t, Year: year, LastNumber: last}
}

func (s *memorySequenceStore) Increment(_ context.Context, t sequence.Type, year int) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[counterKey(t, year)]
	if !ok {
		c = &sequence.Counter{Type: t, Year: year}
		s.counters[counterKey(t, year)] = c
	}
	previous := c.LastNumber
	c.LastNumber += 1 + s.skip
	return previous, c.LastNumber, nil
}

func (s *memorySequenceStore) Current(_ context.Context, t sequence.Type, year int) (*sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[counterKey(t, year)]
	if !ok {
		return nil, shared.NotFound("counter not found")
	}
	cp := *c
	return &cp, nil
}

func (s *memorySequenceStore) List(_ context.Context) ([]sequence.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sequence.Counter, 0, len(s.counters))
	for _, c := range s.counters {
		out = append(out, *c)
	}
	return out, nil
}

type testEnv struct {
	docs       *MockDocumentRepository
	payments   *MockPaymentRepository
	deliveries *MockDeliveryLogRepository
	audits     *memoryAuditRepository
	store      *memorySequenceStore
	publisher  *MockEventPublisher
	service    *DocumentService
	paymentSvc *PaymentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		docs:       new(MockDocumentRepository),
		payments:   new(MockPaymentRepository),
		deliveries: new(MockDeliveryLogRepository),
		audits:     &memoryAuditRepository{},
		store:      newMemorySequenceStore(),
		publisher:  &MockEventPublisher{},
	}
	scope := NewNoOpTransactionScope(env.docs, env.payments, env.deliveries, env.store, env.audits)
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }

	env.service = NewDocumentService(env.docs, env.deliveries, env.audits, scope, logger)
	env.service.SetEventPublisher(env.publisher)
	env.service.SetClock(clock)

	env.paymentSvc = NewPaymentService(env.payments, env.docs, scope, logger)
	env.paymentSvc.SetEventPublisher(env.publisher)
	env.paymentSvc.SetClock(clock)
	return env
}

func testContentRequest() ContentRequest {
	rate := 20
	return ContentRequest{
		ClientID:   uuid.New(),
		ClientName: "Riad Atlas",
		ClientCity: "Marrakech",
		Items: []ItemRequest{
			{Designation: "Table en noyer", Quantity: dec("2"), UnitPriceHT: dec("500"), TVARate: &rate},
		},
	}
}

// newDraft builds a draft of 1000 HT / 1200 TTC
func newDraft(t *testing.T, typ document.Type) *document.Document {
	t.Helper()
	content := testContentRequest().toContent(testNow)
	d, err := document.New(document.NewParams{Type: typ, Content: content, Now: testNow})
	require.NoError(t, err)
	d.ClearDomainEvents()
	return d
}

func issuedDoc(t *testing.T, typ document.Type, number string) *document.Document {
	t.Helper()
	d := newDraft(t, typ)
	require.NoError(t, d.Issue(number, nil, testNow))
	d.ClearDomainEvents()
	return d
}

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
