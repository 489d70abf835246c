package persistence

import (
	"context"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const defaultAuditLimit = 50

// GormAuditRepository implements audit.Repository using GORM. Rows are insert-only.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save appends an audit entry
func (r *GormAuditRepository) Save(ctx context.Context, log *audit.Log) error {
	model := &models.AuditLogModel{}
	model.FromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormAuditRepository) applyFilter(query *gorm.DB, f audit.Filter) *gorm.DB {
	if f.DateFrom != nil {
		query = query.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("created_at <= ?", *f.DateTo)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if len(f.Actions) > 0 {
		query = query.Where("action IN ?", f.Actions)
	}
	if f.Entity != "" {
		query = query.Where("entity = ?", f.Entity)
	}
	if f.EntityID != nil {
		query = query.Where("entity_id = ?", *f.EntityID)
	}
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if len(f.Categories) > 0 {
		categories := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			categories[i] = string(c)
		}
		query = query.Where("category IN ?", categories)
	}
	if f.Severity != "" {
		query = query.Where("severity = ?", string(f.Severity))
	}
	if f.DocumentType != "" {
		query = query.Where("document_type = ?", f.DocumentType)
	}
	if f.DocumentNumber != "" {
		query = query.Where("document_number = ?", f.DocumentNumber)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(description) LIKE ? OR LOWER(document_number) LIKE ? OR LOWER(user_email) LIKE ?", like, like, like)
	}
	return query
}

// Search lists entries newest first with the total matching count
func (r *GormAuditRepository) Search(ctx context.Context, filter audit.Filter) ([]audit.Log, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	var rows []models.AuditLogModel
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]audit.Log, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, total, nil
}

// CountByAction groups the matching entries by action
func (r *GormAuditRepository) CountByAction(ctx context.Context, filter audit.Filter) (map[string]int64, error) {
	var rows []struct {
		Action string
		Count  int64
	}
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter).
		Select("action, COUNT(*) AS count").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

var _ audit.Repository = (*GormAuditRepository)(nil)
