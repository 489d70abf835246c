package persistence

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/setting"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements setting.Repository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindByGroups loads the stored rows of the given groups, all groups when empty
func (r *GormSettingRepository) FindByGroups(ctx context.Context, groups []string) ([]setting.Setting, error) {
	query := r.db.WithContext(ctx).Model(&setting.Setting{})
	if len(groups) > 0 {
		query = query.Where("group_name IN ?", groups)
	}
	var rows []setting.Setting
	err := query.Order("group_name ASC").Order("key ASC").Find(&rows).Error
	return rows, err
}

// Upsert writes the rows in a single transaction
func (r *GormSettingRepository) Upsert(ctx context.Context, rows []setting.Setting) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_name"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by_id", "updated_at"}),
		}).Create(&rows).Error
	})
}

// DeleteGroup removes every stored row of a group, restoring its defaults
func (r *GormSettingRepository) DeleteGroup(ctx context.Context, group string) error {
	return r.db.WithContext(ctx).Where("group_name = ?", group).Delete(&setting.Setting{}).Error
}

var _ setting.Repository = (*GormSettingRepository)(nil)
