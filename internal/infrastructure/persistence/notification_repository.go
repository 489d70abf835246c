package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateMany inserts the notifications in batches
func (r *GormNotificationRepository) CreateMany(ctx context.Context, ns []notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(ns, 100).Error
}

func (r *GormNotificationRepository) FindForUser(ctx context.Context, userID uuid.UUID, f notification.Filter) ([]notification.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var out []notification.Notification
	err := query.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead only touches notifications owned by the user
func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read = ? AND id IN ?", userID, false, ids).
		Updates(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&notification.Notification{})
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, true).
		Delete(&notification.Notification{})
	return res.RowsAffected, res.Error
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
