package telemetry

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormGaugeSource implements GaugeSource with aggregate queries on the
// catalog and document tables.
type GormGaugeSource struct {
	db *gorm.DB
}

// NewGormGaugeSource creates a new GormGaugeSource.
func NewGormGaugeSource(db *gorm.DB) *GormGaugeSource {
	return &GormGaugeSource{db: db}
}

// LowStockCount counts active tracked items at or below their minimum.
func (s *GormGaugeSource) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("catalog_items").
		Where("is_active = ? AND track_stock = ? AND stock_min IS NOT NULL AND stock_qty <= stock_min", true, true).
		Count(&count).Error
	return count, err
}

// OverdueInvoices returns the number of overdue invoices and their unpaid balance.
func (s *GormGaugeSource) OverdueInvoices(ctx context.Context) (int64, decimal.Decimal, error) {
	var row struct {
		Count   int64
		Balance decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Table("crm_documents").
		Select("COUNT(*) AS count, COALESCE(SUM(balance), 0) AS balance").
		Where("type = ? AND status = ?", document.TypeFacture, document.StatusOverdue).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.Count, row.Balance, nil
}

var _ GaugeSource = (*GormGaugeSource)(nil)
