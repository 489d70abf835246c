package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"gorm.io/gorm"
)

const defaultUserPageSize = 20

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return findOne[identity.User](ctx, r.db, "id = ?", id)
}

// FindByEmail expects a normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return findOne[identity.User](ctx, r.db, "email = ?", email)
}

// FindAll lists users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	f := filter.Filter.Normalize(defaultUserPageSize)

	query := r.db.WithContext(ctx).Model(&identity.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	query = likeAny(query, f.Search, "name", "email")
	return page[identity.User](query, f, userSort.order(f, "created_at"))
}

// FindActiveByRoles returns the active users holding one of the roles, oldest account first
func (r *GormUserRepository) FindActiveByRoles(ctx context.Context, roles ...identity.Role) ([]identity.User, error) {
	var users []identity.User
	if len(roles) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND role IN ?", true, roles).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// ExistsByEmail reports whether another account uses the email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	if excludeID != nil {
		return exists[identity.User](ctx, r.db, "email = ? AND id <> ?", email, *excludeID)
	}
	return exists[identity.User](ctx, r.db, "email = ?", email)
}

func (r *GormUserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("role = ? AND is_active = ?", identity.RoleAdmin, true).
		Count(&n).Error
	return n, err
}

func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteWhere[identity.User](ctx, r.db, "id = ?", id)
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
