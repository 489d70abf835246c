package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultQuotePageSize = 20

// GormQuoteRepository implements webquote.Repository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

func withQuoteNotes(db *gorm.DB) *gorm.DB {
	return db.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
}

// FindByID finds a request with its notes, newest note first
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*webquote.QuoteRequest, error) {
	return findOne[webquote.QuoteRequest](ctx, r.db.Scopes(withQuoteNotes), "id = ?", id)
}

// FindAll lists requests matching the filter
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter webquote.Filter) ([]webquote.QuoteRequest, int64, error) {
	f := filter.Filter.Normalize(defaultQuotePageSize)

	query := r.db.WithContext(ctx).Model(&webquote.QuoteRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	query = likeAny(query, f.Search, "quote_number", "customer_name", "customer_email", "customer_phone", "company")
	return page[webquote.QuoteRequest](query, f, quoteSort.order(f, "created_at"))
}

// CountByStatus returns the number of requests in each status
func (r *GormQuoteRepository) CountByStatus(ctx context.Context) ([]webquote.StatusCount, error) {
	var counts []webquote.StatusCount
	err := r.db.WithContext(ctx).Model(&webquote.QuoteRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, err
}

// FindQuotedBefore lists quoted requests whose validity ended before t
func (r *GormQuoteRepository) FindQuotedBefore(ctx context.Context, t time.Time) ([]webquote.QuoteRequest, error) {
	var quotes []webquote.QuoteRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", webquote.StatusQuoted, t).
		Order("valid_until ASC").
		Find(&quotes).Error
	return quotes, err
}

// Save writes the request; notes are append-only
func (r *GormQuoteRepository) Save(ctx context.Context, q *webquote.QuoteRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var versions []int
		if err := tx.Model(&webquote.QuoteRequest{}).Where("id = ?", q.ID).Pluck("version", &versions).Error; err != nil {
			return err
		}
		if len(versions) > 0 && versions[0] > q.Version {
			return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "La demande a été modifiée par un autre utilisateur")
		}
		if err := tx.Omit(clause.Associations).Save(q).Error; err != nil {
			return err
		}
		if len(q.Notes) > 0 {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&q.Notes).Error
		}
		return nil
	})
}

// Delete removes a request and its notes
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&webquote.Note{}).Error; err != nil {
			return err
		}
		return deleteWhere[webquote.QuoteRequest](ctx, tx, "id = ?", id)
	})
}

var _ webquote.Repository = (*GormQuoteRepository)(nil)
