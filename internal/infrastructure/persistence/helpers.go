package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// findOne loads the first row matching the query, mapping a miss to shared.ErrNotFound
func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// deleteWhere deletes rows of T and reports shared.ErrNotFound when nothing matched
func deleteWhere[T any](ctx context.Context, db *gorm.DB, query string, args ...any) error {
	var zero T
	result := db.WithContext(ctx).Where(query, args...).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// exists reports whether at least one row of T matches
func exists[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var zero T
	var count int64
	err := db.WithContext(ctx).Model(&zero).Where(query, args...).Limit(1).Count(&count).Error
	return count > 0, err
}

// likeAny adds a case-insensitive substring match over several columns
func likeAny(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	like := "%" + strings.ToLower(search) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	return query.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// page counts the matching rows then loads the requested page. The scopes
// (preloads) are applied to the page query only.
func page[T any](query *gorm.DB, f shared.Filter, order clause.OrderByColumn, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(scopes...)
	var rows []T
	err := query.Order(order).Offset(f.Offset()).Limit(f.PageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
