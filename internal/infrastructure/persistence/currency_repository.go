package persistence

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/currency"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCurrencyRepository implements currency.Repository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindAll lists currencies, the base currency first then by code
func (r *GormCurrencyRepository) FindAll(ctx context.Context, activeOnly bool) ([]currency.Currency, error) {
	query := r.db.WithContext(ctx).Model(&currency.Currency{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var out []currency.Currency
	err := query.Order("is_default DESC").Order("code ASC").Find(&out).Error
	return out, err
}

func (r *GormCurrencyRepository) FindByCode(ctx context.Context, code string) (*currency.Currency, error) {
	c, err := findOne[currency.Currency](ctx, r.db, "code = ?", code)
	if shared.IsNotFound(err) {
		return nil, currency.ErrCurrencyNotFound
	}
	return c, err
}

func (r *GormCurrencyRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&currency.Currency{}).Count(&n).Error
	return n, err
}

// SaveAll upserts the given currencies in one transaction
func (r *GormCurrencyRepository) SaveAll(ctx context.Context, cs []currency.Currency) error {
	if len(cs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "symbol", "rate", "position", "decimals", "is_default", "is_active", "updated_at"}),
		}).Create(&cs).Error
	})
}

var _ currency.Repository = (*GormCurrencyRepository)(nil)
