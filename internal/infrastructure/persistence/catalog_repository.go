package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"gorm.io/gorm"
)

const defaultCatalogPageSize = 50

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	return findOne[catalog.Item](ctx, r.db, "id = ?", id)
}

// FindByIDs loads several items
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []catalog.Item
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// FindAll lists items, by name unless another order is asked
func (r *GormItemRepository) FindAll(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, int64, error) {
	f := filter.Filter
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "name", "asc"
	}
	f = f.Normalize(defaultCatalogPageSize)

	query := r.db.WithContext(ctx).Model(&catalog.Item{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.LowStock {
		query = query.Where("track_stock = ? AND stock_min IS NOT NULL AND stock_qty <= stock_min", true)
	}
	query = likeAny(query, f.Search, "name", "sku", "description")
	return page[catalog.Item](query, f, itemSort.order(f, "name"))
}

// ExistsBySKU reports whether another item uses the SKU
func (r *GormItemRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	if excludeID != nil {
		return exists[catalog.Item](ctx, r.db, "sku = ? AND id <> ?", sku, *excludeID)
	}
	return exists[catalog.Item](ctx, r.db, "sku = ?", sku)
}

// LastSKU returns the highest SKU carrying the prefix
func (r *GormItemRepository) LastSKU(ctx context.Context, prefix string) (string, error) {
	var skus []string
	err := r.db.WithContext(ctx).Model(&catalog.Item{}).
		Where("sku LIKE ?", prefix+"-%").
		Order("sku DESC").Limit(1).
		Pluck("sku", &skus).Error
	if err != nil || len(skus) == 0 {
		return "", err
	}
	return skus[0], nil
}

// FindTracked lists active stock-tracked items ordered by name
func (r *GormItemRepository) FindTracked(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	err := r.db.WithContext(ctx).
		Where("track_stock = ? AND is_active = ?", true, true).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// CountByCategory counts the items filed under a category
func (r *GormItemRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Item{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// ExistsForSupplier reports whether any item references the supplier
func (r *GormItemRepository) ExistsForSupplier(ctx context.Context, supplierID uuid.UUID) (bool, error) {
	return exists[catalog.Item](ctx, r.db, "supplier_id = ?", supplierID)
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, it *catalog.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

// Delete removes an item and its stock journal
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&catalog.StockMovement{}).Error; err != nil {
			return err
		}
		return deleteWhere[catalog.Item](ctx, tx, "id = ?", id)
	})
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return findOne[catalog.Category](ctx, r.db, "id = ?", id)
}

// FindTree returns the root categories with two levels of children
func (r *GormCategoryRepository) FindTree(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if activeOnly {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order ASC, name ASC")
	}
	var roots []catalog.Category
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Children", scope).
		Preload("Children.Children", scope).
		Where("parent_id IS NULL").
		Find(&roots).Error
	return roots, err
}

// ExistsBySlug reports whether another category uses the slug
func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	if excludeID != nil {
		return exists[catalog.Category](ctx, r.db, "slug = ? AND id <> ?", slug, *excludeID)
	}
	return exists[catalog.Category](ctx, r.db, "slug = ?", slug)
}

// CountChildren counts direct sub-categories
func (r *GormCategoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Omit("Children").Save(c).Error
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteWhere[catalog.Category](ctx, r.db, "id = ?", id)
}

// GormSupplierRepository implements catalog.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	return findOne[catalog.Supplier](ctx, r.db, "id = ?", id)
}

// FindAll lists suppliers, by name unless another order is asked
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter catalog.SupplierFilter) ([]catalog.Supplier, int64, error) {
	f := filter.Filter
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "name", "asc"
	}
	f = f.Normalize(defaultCatalogPageSize)
	query := r.db.WithContext(ctx).Model(&catalog.Supplier{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	query = likeAny(query, f.Search, "name", "code", "contact_name", "city")
	return page[catalog.Supplier](query, f, supplierSort.order(f, "name"))
}

// ExistsByCode reports whether a supplier uses the code
func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists[catalog.Supplier](ctx, r.db, "code = ?", code)
}

// LastCode returns the highest supplier code
func (r *GormSupplierRepository) LastCode(ctx context.Context) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&catalog.Supplier{}).
		Where("code LIKE ?", catalog.SupplierCodePrefix+"-%").
		Order("code DESC").Limit(1).
		Pluck("code", &codes).Error
	if err != nil || len(codes) == 0 {
		return "", err
	}
	return codes[0], nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *catalog.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete removes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteWhere[catalog.Supplier](ctx, r.db, "id = ?", id)
}

// GormMovementRepository implements catalog.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement
func (r *GormMovementRepository) Save(ctx context.Context, m *catalog.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByItem returns the latest movements of an item
func (r *GormMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]catalog.StockMovement, error) {
	var out []catalog.StockMovement
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// FindRecent returns the latest movements across items
func (r *GormMovementRepository) FindRecent(ctx context.Context, limit int) ([]catalog.StockMovement, error) {
	var out []catalog.StockMovement
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

var (
	_ catalog.ItemRepository     = (*GormItemRepository)(nil)
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
	_ catalog.SupplierRepository = (*GormSupplierRepository)(nil)
	_ catalog.MovementRepository = (*GormMovementRepository)(nil)
)
