package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultOrderPageSize = 10

// GormOrderRepository implements shop.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func withOrderLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, args ...any) (*shop.Order, error) {
	return findOne[shop.Order](ctx, r.db.Scopes(withOrderLines), query, args...)
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds an order by its ORD number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*shop.Order, error) {
	return r.findOne(ctx, "order_number = ?", number)
}

// FindForTracking matches number and email ignoring case
func (r *GormOrderRepository) FindForTracking(ctx context.Context, number, email string) (*shop.Order, error) {
	return r.findOne(ctx, "UPPER(order_number) = ? AND LOWER(customer_email) = ?",
		strings.ToUpper(strings.TrimSpace(number)), strings.ToLower(strings.TrimSpace(email)))
}

// FindByCheckoutSession finds the order paid by a Stripe session
func (r *GormOrderRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*shop.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

// FindByPaymentIntent finds the order settled by a Stripe payment intent
func (r *GormOrderRepository) FindByPaymentIntent(ctx context.Context, paymentIntent string) (*shop.Order, error) {
	return r.findOne(ctx, "stripe_payment_id = ?", paymentIntent)
}

// FindAll lists orders, newest first by default
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shop.Filter) ([]shop.Order, int64, error) {
	f := filter.Filter.Normalize(defaultOrderPageSize)

	query := r.db.WithContext(ctx).Model(&shop.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	query = likeAny(query, f.Search, "order_number", "customer_name", "customer_email", "customer_phone")
	return page[shop.Order](query, f, orderSort.order(f, "created_at"), func(db *gorm.DB) *gorm.DB {
		return db.Preload("Items")
	})
}

// Stats summarises the order book; today starts at midnight of the given time
func (r *GormOrderRepository) Stats(ctx context.Context, today time.Time) (shop.Stats, error) {
	var stats shop.Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&shop.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&shop.Order{}).Where("status = ?", shop.StatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return stats, err
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if err := db.Model(&shop.Order{}).Where("created_at >= ?", midnight).Count(&stats.TodayOrders).Error; err != nil {
		return stats, err
	}
	var revenue struct{ Total decimal.NullDecimal }
	if err := db.Model(&shop.Order{}).
		Select("SUM(total) AS total").
		Where("payment_status = ?", shop.PaymentPaid).
		Scan(&revenue).Error; err != nil {
		return stats, err
	}
	stats.TotalRevenue = decimal.Zero
	if revenue.Total.Valid {
		stats.TotalRevenue = revenue.Total.Decimal
	}
	return stats, nil
}

// ItemInUse reports whether an order line references the catalog item
func (r *GormOrderRepository) ItemInUse(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return exists[shop.OrderItem](ctx, r.db, "catalog_item_id = ?", itemID)
}

// Save writes the order header; lines and timeline entries are append-only
func (r *GormOrderRepository) Save(ctx context.Context, o *shop.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var versions []int
		if err := tx.Model(&shop.Order{}).Where("id = ?", o.ID).Pluck("version", &versions).Error; err != nil {
			return err
		}
		if len(versions) > 0 && versions[0] > o.Version {
			return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "La commande a été modifiée par un autre utilisateur")
		}
		if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
			return err
		}
		if len(o.Items) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.Items).Error; err != nil {
				return err
			}
		}
		if len(o.Events) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.Events).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ shop.OrderRepository = (*GormOrderRepository)(nil)
