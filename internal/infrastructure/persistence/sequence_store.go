package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceStore keeps numbering counters in the document_sequences table
type GormSequenceStore struct {
	db *gorm.DB
}

// NewGormSequenceStore creates a new GormSequenceStore
func NewGormSequenceStore(db *gorm.DB) *GormSequenceStore {
	return &GormSequenceStore{db: db}
}

// Increment advances the counter by one under a row lock. The update is
// conditioned on the value read, so a concurrent writer yields ErrSequenceConflict
// and the generator retries.
func (s *GormSequenceStore) Increment(ctx context.Context, t sequence.Type, year int) (previous, next int64, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var row models.SequenceModel
		findErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ? AND year = ?", string(t), year).
			Take(&row).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SequenceModel{
				Type:       string(t),
				Year:       year,
				LastNumber: 1,
				UpdatedAt:  now,
			})
			if created.Error != nil {
				return created.Error
			}
			if created.RowsAffected == 0 {
				return sequence.ErrSequenceConflict
			}
			previous, next = 0, 1
			return nil
		}
		if findErr != nil {
			return findErr
		}

		result := tx.Model(&models.SequenceModel{}).
			Where("type = ? AND year = ? AND last_number = ?", string(t), year, row.LastNumber).
			Updates(map[string]interface{}{
				"last_number": row.LastNumber + 1,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return sequence.ErrSequenceConflict
		}
		previous, next = row.LastNumber, row.LastNumber+1
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return previous, next, nil
}

// Current returns the counter for a type and year
func (s *GormSequenceStore) Current(ctx context.Context, t sequence.Type, year int) (*sequence.Counter, error) {
	var row models.SequenceModel
	err := s.db.WithContext(ctx).Where("type = ? AND year = ?", string(t), year).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// List returns every counter ordered by type then year
func (s *GormSequenceStore) List(ctx context.Context) ([]sequence.Counter, error) {
	var rows []models.SequenceModel
	if err := s.db.WithContext(ctx).Order("type ASC, year ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	counters := make([]sequence.Counter, len(rows))
	for i := range rows {
		counters[i] = *rows[i].ToDomain()
	}
	return counters, nil
}

var _ sequence.Store = (*GormSequenceStore)(nil)
