package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MockUsageChecker is a mock implementation of catalog.UsageChecker
type MockUsageChecker struct {
	mock.Mock
}

func (m *MockUsageChecker) ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

// MockSupplierRepository is a mock implementation of catalog.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter catalog.SupplierFilter) ([]catalog.Supplier, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Supplier), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) LastCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, s *catalog.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindTree(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// memoryItemRepository keeps items in a map
type memoryItemRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Item
}

func newMemoryItemRepository(items ...*catalog.Item) *memoryItemRepository {
	r := &memoryItemRepository{items: make(map[uuid.UUID]*catalog.Item)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *memoryItemRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return it, nil
}

func (r *memoryItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, id := range ids {
		if it, err := r.FindByID(ctx, id); err == nil {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memoryItemRepository) sorted() []catalog.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memoryItemRepository) FindAll(_ context.Context, filter catalog.ItemFilter) ([]catalog.Item, int64, error) {
	var out []catalog.Item
	for _, it := range r.sorted() {
		if filter.ActiveOnly && !it.IsActive {
			continue
		}
		if filter.LowStock && !it.IsLowStock() {
			continue
		}
		out = append(out, it)
	}
	return out, int64(len(out)), nil
}

func (r *memoryItemRepository) ExistsBySKU(_ context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.SKU == sku && (excludeID == nil || it.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryItemRepository) LastSKU(_ context.Context, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := ""
	for _, it := range r.items {
		if strings.HasPrefix(it.SKU, prefix+"-") && it.SKU > last {
			last = it.SKU
		}
	}
	return last, nil
}

func (r *memoryItemRepository) FindTracked(_ context.Context) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range r.sorted() {
		if it.TrackStock && it.IsActive {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memoryItemRepository) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	for _, it := range r.sorted() {
		if it.CategoryID != nil && *it.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *memoryItemRepository) ExistsForSupplier(_ context.Context, supplierID uuid.UUID) (bool, error) {
	for _, it := range r.sorted() {
		if it.SupplierID != nil && *it.SupplierID == supplierID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryItemRepository) Save(_ context.Context, it *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	return nil
}

func (r *memoryItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// memoryMovementRepository appends movements
type memoryMovementRepository struct {
	mu        sync.Mutex
	movements []catalog.StockMovement
}

func (r *memoryMovementRepository) Save(_ context.Context, m *catalog.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memoryMovementRepository) FindByItem(_ context.Context, itemID uuid.UUID, limit int) ([]catalog.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.StockMovement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.movements[i].ItemID == itemID {
			out = append(out, r.movements[i])
		}
	}
	return out, nil
}

func (r *memoryMovementRepository) FindRecent(_ context.Context, limit int) ([]catalog.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.StockMovement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.movements[i])
	}
	return out, nil
}

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

func (r *memoryAuditRepository) Search(_ context.Context, _ audit.Filter) ([]audit.Log, int64, error) {
	return nil, 0, nil
}

func (r *memoryAuditRepository) CountByAction(_ context.Context, _ audit.Filter) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type testEnv struct {
	items      *memoryItemRepository
	movements  *memoryMovementRepository
	audits     *memoryAuditRepository
	categories *MockCategoryRepository
	suppliers  *MockSupplierRepository
	usage      *MockUsageChecker
	catalog    *CatalogService
	stock      *StockService
}

func newTestEnv(items ...*catalog.Item) *testEnv {
	env := &testEnv{
		items:      newMemoryItemRepository(items...),
		movements:  &memoryMovementRepository{},
		audits:     &memoryAuditRepository{},
		categories: new(MockCategoryRepository),
		suppliers:  new(MockSupplierRepository),
		usage:      new(MockUsageChecker),
	}
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }
	env.catalog = NewCatalogService(env.items, env.categories, env.suppliers, env.usage, logger)
	env.catalog.SetClock(clock)
	scope := &NoOpTransactionScope{Items: env.items, Movements: env.movements, Audits: env.audits}
	env.stock = NewStockService(env.items, env.movements, scope, logger)
	env.stock.SetClock(clock)
	return env
}
