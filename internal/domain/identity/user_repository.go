package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// UserFilter narrows the admin user list
type UserFilter struct {
	shared.Filter
	Role     Role
	IsActive *bool
}

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	// FindActiveByRoles returns active users holding one of roles
	FindActiveByRoles(ctx context.Context, roles ...Role) ([]User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
