// Package catalog serves the product and service catalog, its categories,
// suppliers and the stock journal.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultPageSize = 50

// UsageCheckers asks every store that can reference an item
type UsageCheckers []catalog.UsageChecker

// ItemInUse reports whether any checker sees the item referenced
func (u UsageCheckers) ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error) {
	for _, c := range u {
		used, err := c.ItemInUse(ctx, itemID)
		if err != nil || used {
			return used, err
		}
	}
	return false, nil
}

// CatalogService manages items, categories and suppliers
type CatalogService struct {
	itemRepo     catalog.ItemRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo catalog.SupplierRepository
	usage        catalog.UsageChecker
	logger       *zap.Logger
	now          func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	itemRepo catalog.ItemRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo catalog.SupplierRepository,
	usage catalog.UsageChecker,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		usage:        usage,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock overrides time.Now, for tests
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// orNotFound replaces a generic miss with the entity's own message
func orNotFound(err error, miss *shared.DomainError) error {
	if errors.Is(err, shared.ErrNotFound) {
		return miss
	}
	return err
}

func (s *CatalogService) checkRelations(ctx context.Context, p catalog.ItemParams) error {
	if p.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *p.CategoryID); err != nil {
			return orNotFound(err, catalog.ErrCategoryNotFound)
		}
	}
	if p.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, *p.SupplierID); err != nil {
			return orNotFound(err, catalog.ErrSupplierNotFound)
		}
	}
	return nil
}

// CreateItem adds an item, numbering its SKU when none is given
func (s *CatalogService) CreateItem(ctx context.Context, req ItemRequest) (*ItemResponse, error) {
	params := req.params()
	if _, err := catalog.NewItem("", params); err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, params); err != nil {
		return nil, err
	}

	sku := req.SKU
	if sku == "" {
		prefix := catalog.SKUPrefix(params.Type)
		last, err := s.itemRepo.LastSKU(ctx, prefix)
		if err != nil {
			return nil, err
		}
		sku = catalog.NextCode(prefix, last, 4)
	} else {
		taken, err := s.itemRepo.ExistsBySKU(ctx, sku, nil)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError(catalog.CodeSKUExists, "Ce SKU existe déjà")
		}
	}

	it, err := catalog.NewItem(sku, params)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info("catalog item created", zap.String("sku", it.SKU))
	resp := ToItemResponse(it)
	return &resp, nil
}

// GetItem returns one item
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	it, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrItemNotFound)
	}
	resp := ToItemResponse(it)
	return &resp, nil
}

// ListItems returns a page of items, active ones unless asked otherwise
func (s *CatalogService) ListItems(ctx context.Context, req ItemListRequest) (shared.Paginated[ItemResponse], error) {
	f := catalog.ItemFilter{
		Filter:     shared.Filter{Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search},
		Type:       catalog.ItemType(req.Type),
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		ActiveOnly: !req.IncludeInactive,
		LowStock:   req.LowStock,
	}
	items, total, err := s.itemRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ItemResponse]{}, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	paging := f.Filter.Normalize(defaultPageSize)
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

// UpdateItem edits an item; the stock level is left to movements
func (s *CatalogService) UpdateItem(ctx context.Context, id uuid.UUID, req ItemRequest) (*ItemResponse, error) {
	it, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrItemNotFound)
	}
	params := req.params()
	if err := s.checkRelations(ctx, params); err != nil {
		return nil, err
	}
	if req.SKU != "" && req.SKU != it.SKU {
		taken, err := s.itemRepo.ExistsBySKU(ctx, req.SKU, &it.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError(catalog.CodeSKUExists, "Ce SKU existe déjà")
		}
		it.SKU = req.SKU
	}
	if err := it.Update(params, s.now()); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, it); err != nil {
		return nil, err
	}
	resp := ToItemResponse(it)
	return &resp, nil
}

// DeleteItem removes an unused item, or deactivates one that documents reference
func (s *CatalogService) DeleteItem(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	it, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrItemNotFound)
	}
	used, err := s.usage.ItemInUse(ctx, id)
	if err != nil {
		return nil, err
	}
	if used {
		it.Deactivate(s.now())
		if err := s.itemRepo.Save(ctx, it); err != nil {
			return nil, err
		}
		return &DeleteResult{Deactivated: true, Message: "Article désactivé (utilisé dans des documents)"}, nil
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("catalog item deleted", zap.String("sku", it.SKU))
	return &DeleteResult{Deleted: true, Message: "Article supprimé"}, nil
}

// CategoryTree returns the three level category tree
func (s *CatalogService) CategoryTree(ctx context.Context, activeOnly bool) ([]CategoryResponse, error) {
	roots, err := s.categoryRepo.FindTree(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(roots))
	for i := range roots {
		out[i] = ToCategoryResponse(&roots[i])
	}
	return out, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, p catalog.CategoryParams, self *uuid.UUID) error {
	taken, err := s.categoryRepo.ExistsBySlug(ctx, p.Slug, self)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError(catalog.CodeSlugExists, "Ce slug existe déjà")
	}
	if p.ParentID != nil && (self == nil || *p.ParentID != *self) {
		if _, err := s.categoryRepo.FindByID(ctx, *p.ParentID); err != nil {
			return orNotFound(err, shared.NotFound("Catégorie parente non trouvée"))
		}
	}
	return nil
}

// CreateCategory adds a category
func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	c, err := catalog.NewCategory(req.params())
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, catalog.CategoryParams{Slug: c.Slug, ParentID: c.ParentID}, nil); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// UpdateCategory edits a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrCategoryNotFound)
	}
	if err := c.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, catalog.CategoryParams{Slug: c.Slug, ParentID: c.ParentID}, &c.ID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// DeleteCategory removes an empty category
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return orNotFound(err, catalog.ErrCategoryNotFound)
	}
	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.itemRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := catalog.GuardDeleteCategory(children, items); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}

// CreateSupplier adds a supplier, numbering FRN-NNN when no code is given
func (s *CatalogService) CreateSupplier(ctx context.Context, req SupplierRequest) (*catalog.Supplier, error) {
	params := req.params()
	if _, err := catalog.NewSupplier("", params); err != nil {
		return nil, err
	}
	code := req.Code
	if code == "" {
		last, err := s.supplierRepo.LastCode(ctx)
		if err != nil {
			return nil, err
		}
		code = catalog.NextCode(catalog.SupplierCodePrefix, last, 3)
	} else {
		taken, err := s.supplierRepo.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError(catalog.CodeSupplierExists, "Ce code fournisseur existe déjà")
		}
	}
	sup, err := catalog.NewSupplier(code, params)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// GetSupplier returns one supplier
func (s *CatalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	sup, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrSupplierNotFound)
	}
	return sup, nil
}

// ListSuppliers returns a page of suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context, req SupplierListRequest) (shared.Paginated[catalog.Supplier], error) {
	f := catalog.SupplierFilter{
		Filter:     shared.Filter{Page: req.Page, PageSize: req.Limit, Search: req.Search},
		ActiveOnly: req.ActiveOnly,
	}
	list, total, err := s.supplierRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[catalog.Supplier]{}, err
	}
	paging := f.Filter.Normalize(defaultPageSize)
	return shared.NewPaginated(list, total, paging.Page, paging.PageSize), nil
}

// UpdateSupplier edits a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, req SupplierRequest) (*catalog.Supplier, error) {
	sup, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sup.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// DeleteSupplier removes an unused supplier, or deactivates one items reference
func (s *CatalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	sup, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	used, err := s.itemRepo.ExistsForSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if used {
		sup.Deactivate(s.now())
		if err := s.supplierRepo.Save(ctx, sup); err != nil {
			return nil, err
		}
		return &DeleteResult{Deactivated: true, Message: fmt.Sprintf("Fournisseur %s désactivé (utilisé par des articles)", sup.Code)}, nil
	}
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteResult{Deleted: true, Message: "Fournisseur supprimé"}, nil
}
