package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
)

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of the refresh and logout endpoints
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the body of the change password endpoint
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// SessionResponse is returned by login and refresh
type SessionResponse struct {
	auth.TokenPair
	User UserResponse `json:"user"`
}

// UserResponse is a user as returned by the API
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone,omitempty"`
	Avatar      *string    `json:"avatar,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToUserResponse converts a user, never exposing the password hash
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Avatar:      u.Avatar,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// MeResponse is the current user with the permission matrix of their role
type MeResponse struct {
	User           UserResponse                            `json:"user"`
	Permissions    map[identity.Resource][]identity.Action `json:"permissions"`
	HasAdminAccess bool                                    `json:"hasAdminAccess"`
}

// UserListRequest are the query filters of the user list
type UserListRequest struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	Role      string `form:"role" binding:"omitempty,oneof=ADMIN MANAGER COMMERCIAL CHEF_ATELIER COMPTABLE READONLY"`
	IsActive  *bool  `form:"isActive"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

func (r UserListRequest) filter() identity.UserFilter {
	return identity.UserFilter{
		Filter: shared.Filter{
			Page:     r.Page,
			PageSize: r.Limit,
			Search:   r.Search,
			OrderBy:  r.SortBy,
			OrderDir: r.SortOrder,
		}.Normalize(defaultPageSize),
		Role:     identity.Role(r.Role),
		IsActive: r.IsActive,
	}
}

// CreateUserRequest is the body of user creation
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Name     string  `json:"name" binding:"required,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=500"`
	Role     string  `json:"role" binding:"required,oneof=ADMIN MANAGER COMMERCIAL CHEF_ATELIER COMPTABLE READONLY"`
	IsActive *bool   `json:"isActive"`
}

func (r CreateUserRequest) params() identity.UserParams {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return identity.UserParams{
		Email:    r.Email,
		Name:     r.Name,
		Phone:    r.Phone,
		Avatar:   r.Avatar,
		Role:     identity.Role(r.Role),
		IsActive: active,
	}
}

// UpdateUserRequest is the body of user update; empty fields are kept
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=500"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER COMMERCIAL CHEF_ATELIER COMPTABLE READONLY"`
	IsActive *bool   `json:"isActive"`
}

func (r UpdateUserRequest) merge(u *identity.User) identity.UserParams {
	p := identity.UserParams{
		Email:    u.Email,
		Name:     u.Name,
		Phone:    u.Phone,
		Avatar:   u.Avatar,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Avatar != nil {
		p.Avatar = r.Avatar
	}
	if r.Role != nil {
		p.Role = identity.Role(*r.Role)
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}
