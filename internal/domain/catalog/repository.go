package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// SupplierFilter narrows a supplier listing
type SupplierFilter struct {
	shared.Filter
	ActiveOnly bool
}

// ItemRepository defines persistence for catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)
	FindAll(ctx context.Context, filter ItemFilter) ([]Item, int64, error)
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	// LastSKU returns the highest SKU carrying the prefix, or "" when none
	LastSKU(ctx context.Context, prefix string) (string, error)
	// FindTracked lists active items with stock tracking, low stock first
	FindTracked(ctx context.Context) ([]Item, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	ExistsForSupplier(ctx context.Context, supplierID uuid.UUID) (bool, error)
	Save(ctx context.Context, it *Item) error
	// Delete removes the item together with its movements
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines persistence for the category tree
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindTree returns root categories with two levels of children
	FindTree(ctx context.Context, activeOnly bool) ([]Category, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	Save(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierRepository defines persistence for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter SupplierFilter) ([]Supplier, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	LastCode(ctx context.Context) (string, error)
	Save(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementRepository stores the stock journal
type MovementRepository interface {
	Save(ctx context.Context, m *StockMovement) error
	// FindByItem returns the latest movements of an item, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]StockMovement, error)
	FindRecent(ctx context.Context, limit int) ([]StockMovement, error)
}

// UsageChecker reports whether documents or orders reference an item
type UsageChecker interface {
	ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error)
}
