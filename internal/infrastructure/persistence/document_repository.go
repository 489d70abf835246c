package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentSortFields whitelists the columns a listing may be ordered by
var documentSortFields = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"number":     "number",
	"total_ttc":  "total_ttc",
	"due_date":   "due_date",
	"status":     "status",
}

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a document by ID with its lines
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := withItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a document and holds a row lock until the surrounding transaction ends
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	err := withItems(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by its official or draft number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*document.Document, error) {
	var model models.DocumentModel
	err := withItems(r.db.WithContext(ctx)).
		Where("number = ? OR draft_number = ?", number, number).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists documents matching the filter, newest first
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter document.ListFilter) ([]document.Document, int64, error) {
	filter.Filter = filter.Filter.Normalize(20)
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(client_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := documentSortFields[filter.OrderBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}

	var rows []models.DocumentModel
	err := withItems(query).
		Order(fmt.Sprintf("%s %s", column, dir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	docs := make([]document.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// FindByIDs loads several documents, silently skipping unknown IDs
func (r *GormDocumentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*document.Document, error) {
	if len(ids) == 0 {
		return []*document.Document{}, nil
	}
	var rows []models.DocumentModel
	if err := withItems(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// FindDepositInvoices lists the deposit invoices linked to a devis
func (r *GormDocumentRepository) FindDepositInvoices(ctx context.Context, devisID uuid.UUID) ([]*document.Document, error) {
	var rows []models.DocumentModel
	err := withItems(r.db.WithContext(ctx)).
		Where("type = ? AND linked_devis_id = ?", document.TypeFactureAcompte, devisID).
		Order("date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// FindOverdueCandidates lists issued invoices still owing money past their due date
func (r *GormDocumentRepository) FindOverdueCandidates(ctx context.Context, before time.Time) ([]*document.Document, error) {
	var rows []models.DocumentModel
	err := withItems(r.db.WithContext(ctx)).
		Where("type IN ?", []document.Type{document.TypeFacture, document.TypeFactureAcompte}).
		Where("status IN ?", []document.Status{document.StatusSent, document.StatusPartial}).
		Where("is_draft = ? AND due_date IS NOT NULL AND due_date < ?", false, before).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// FindExpiringQuotes lists sent devis whose validity ends within [from, to]
func (r *GormDocumentRepository) FindExpiringQuotes(ctx context.Context, from, to time.Time) ([]document.Document, error) {
	var rows []models.DocumentModel
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", document.TypeDevis, document.StatusSent).
		Where("valid_until >= ? AND valid_until <= ?", from, to).
		Order("valid_until ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]document.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

func officialPattern(t document.Type, year int) (string, error) {
	cfg, err := sequence.ConfigFor(t.SequenceType())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%%", cfg.Prefix, year), nil
}

// CountOfficial counts documents of a type numbered in the given year
func (r *GormDocumentRepository) CountOfficial(ctx context.Context, t document.Type, year int) (int64, error) {
	pattern, err := officialPattern(t, year)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("type = ? AND is_draft = ? AND number LIKE ?", t, false, pattern).
		Count(&count).Error
	return count, err
}

// ListOfficialNumbers returns the official numbers of a type for a year in ascending order
func (r *GormDocumentRepository) ListOfficialNumbers(ctx context.Context, t document.Type, year int) ([]string, error) {
	pattern, err := officialPattern(t, year)
	if err != nil {
		return nil, err
	}
	var numbers []string
	err = r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("type = ? AND is_draft = ? AND number LIKE ?", t, false, pattern).
		Order("number ASC").
		Pluck("number", &numbers).Error
	return numbers, err
}

// ExistsForClient reports whether any document references the client
func (r *GormDocumentRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("client_id = ?", clientID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// ItemInUse reports whether any document line references the catalog item
func (r *GormDocumentRepository) ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return exists[models.DocumentItemModel](ctx, r.db, "catalog_item_id = ?", itemID)
}

// InvoiceTotals sums the client's issued invoices that are not cancelled
func (r *GormDocumentRepository) InvoiceTotals(ctx context.Context, clientID uuid.UUID) (document.InvoiceTotals, error) {
	var row struct {
		Count    int64
		TotalTTC decimal.Decimal
		Paid     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_ttc), 0) AS total_ttc, COALESCE(SUM(paid_amount), 0) AS paid").
		Where("client_id = ? AND type IN ? AND is_draft = ? AND status <> ?",
			clientID, []document.Type{document.TypeFacture, document.TypeFactureAcompte}, false, document.StatusCancelled).
		Scan(&row).Error
	if err != nil {
		return document.InvoiceTotals{}, err
	}
	return document.InvoiceTotals{Count: row.Count, TotalTTC: row.TotalTTC, Paid: row.Paid}, nil
}

// Save creates or updates a document and replaces its lines.
// A stored version newer than the in-memory one means another writer won.
func (r *GormDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	model := models.DocumentModelFromDomain(d)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var versions []int
		if err := tx.Model(&models.DocumentModel{}).Where("id = ?", d.ID).Pluck("version", &versions).Error; err != nil {
			return err
		}
		if len(versions) > 0 && versions[0] > d.Version {
			return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Le document a été modifié par un autre utilisateur")
		}

		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", d.ID).Delete(&models.DocumentItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a document and its lines
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func toDocuments(rows []models.DocumentModel) []*document.Document {
	docs := make([]*document.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ document.DocumentRepository = (*GormDocumentRepository)(nil)
