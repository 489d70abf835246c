package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocument lists the payments of an invoice in payment order
func (r *GormPaymentRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]document.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("payment_date ASC, number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// FindAll lists payments received within [from, to]
func (r *GormPaymentRepository) FindAll(ctx context.Context, from, to time.Time) ([]document.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date <= ?", from, to).
		Order("payment_date ASC, number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// FindByClient lists every payment of a client, latest first
func (r *GormPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]document.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("payment_date DESC, number DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *document.Payment) error {
	model := &models.PaymentModel{}
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toPayments(rows []models.PaymentModel) []document.Payment {
	payments := make([]document.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

// GormDeliveryLogRepository implements DeliveryLogRepository using GORM
type GormDeliveryLogRepository struct {
	db *gorm.DB
}

// NewGormDeliveryLogRepository creates a new GormDeliveryLogRepository
func NewGormDeliveryLogRepository(db *gorm.DB) *GormDeliveryLogRepository {
	return &GormDeliveryLogRepository{db: db}
}

// Save appends a delivery log
func (r *GormDeliveryLogRepository) Save(ctx context.Context, log *document.DeliveryLog) error {
	model := &models.DeliveryLogModel{}
	model.FromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByBC lists the deliveries of a bon de commande, oldest first
func (r *GormDeliveryLogRepository) FindByBC(ctx context.Context, bcID uuid.UUID) ([]document.DeliveryLog, error) {
	var rows []models.DeliveryLogModel
	err := r.db.WithContext(ctx).
		Where("bc_id = ?", bcID).
		Order("delivery_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	logs := make([]document.DeliveryLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, nil
}

var (
	_ document.PaymentRepository     = (*GormPaymentRepository)(nil)
	_ document.DeliveryLogRepository = (*GormDeliveryLogRepository)(nil)
)
