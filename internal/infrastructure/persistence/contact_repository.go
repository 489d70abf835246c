package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"gorm.io/gorm"
)

const defaultMessagePageSize = 20

// GormContactRepository implements contact.Repository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	return findOne[contact.Message](ctx, r.db, "id = ?", id)
}

// FindAll lists messages matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, filter contact.Filter) ([]contact.Message, int64, error) {
	f := filter.Filter.Normalize(defaultMessagePageSize)

	query := r.db.WithContext(ctx).Model(&contact.Message{})
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.Read != nil {
		query = query.Where("read = ?", *filter.Read)
	}
	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	query = likeAny(query, f.Search, "name", "email", "subject", "content")
	return page[contact.Message](query, f, messageSort.order(f, "created_at"))
}

// FindReplies lists the answers sent to a message, oldest first
func (r *GormContactRepository) FindReplies(ctx context.Context, id uuid.UUID) ([]contact.Message, error) {
	var replies []contact.Message
	err := r.db.WithContext(ctx).
		Where("in_reply_to_id = ?", id).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

// Counters counts unread, starred and archived received messages
func (r *GormContactRepository) Counters(ctx context.Context) (contact.Counters, error) {
	var c contact.Counters
	err := r.db.WithContext(ctx).Model(&contact.Message{}).
		Where("direction = ?", contact.Received).
		Select(`COALESCE(SUM(CASE WHEN read = ? AND archived = ? THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN starred = ? THEN 1 ELSE 0 END), 0) AS starred,
			COALESCE(SUM(CASE WHEN archived = ? THEN 1 ELSE 0 END), 0) AS archived`,
			false, false, true, true).
		Scan(&c).Error
	return c, err
}

func (r *GormContactRepository) Save(ctx context.Context, m *contact.Message) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes a message along with the replies sent to it
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("in_reply_to_id = ?", id).Delete(&contact.Message{}).Error; err != nil {
			return err
		}
		return deleteWhere[contact.Message](ctx, tx, "id = ?", id)
	})
}

var _ contact.Repository = (*GormContactRepository)(nil)
