// Package identity holds back office users and the role permission matrix.
package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// Errors returned by the user aggregate
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Email ou mot de passe incorrect")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "Ce compte est désactivé")
	ErrWrongPassword      = shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe actuel est incorrect")
	ErrEmailTaken         = shared.NewDomainError("EMAIL_EXISTS", "Un utilisateur avec cet email existe déjà")
	ErrLastAdmin          = shared.NewDomainError("LAST_ADMIN", "Impossible de retirer le dernier administrateur actif")
	ErrSelfDelete         = shared.NewDomainError("SELF_DELETE", "Vous ne pouvez pas supprimer votre propre compte")
)

// User is a back office account
type User struct {
	shared.BaseAggregateRoot
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password;type:varchar(255);not null"`
	Name         string     `gorm:"type:varchar(200);not null"`
	Phone        *string    `gorm:"type:varchar(50)"`
	Avatar       *string    `gorm:"type:varchar(500)"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'READONLY';index"`
	IsActive     bool       `gorm:"not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login"`
	LastLoginIP  string     `gorm:"type:varchar(45)"`
}

// TableName maps users to their table
func (User) TableName() string { return "users" }

// UserParams are the editable attributes of a user
type UserParams struct {
	Email    string
	Name     string
	Phone    *string
	Avatar   *string
	Role     Role
	IsActive bool
}

func (p UserParams) validate() error {
	var details []shared.ErrorDetail
	if _, err := mail.ParseAddress(strings.TrimSpace(p.Email)); err != nil || strings.TrimSpace(p.Email) == "" {
		details = append(details, shared.ErrorDetail{Field: "email", Message: "Email invalide"})
	}
	if strings.TrimSpace(p.Name) == "" {
		details = append(details, shared.ErrorDetail{Field: "name", Message: "Le nom est requis"})
	}
	if !p.Role.IsValid() {
		details = append(details, shared.ErrorDetail{Field: "role", Message: "Rôle invalide"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données utilisateur invalides", details...)
	}
	return nil
}

// NewUser creates an account with a hashed password
func NewUser(p UserParams, password string, now time.Time) (*User, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	u := &User{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	u.CreatedAt = now
	u.UpdatedAt = now
	u.apply(p)
	if err := u.setPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) apply(p UserParams) {
	u.Email = NormalizeEmail(p.Email)
	u.Name = strings.TrimSpace(p.Name)
	u.Phone = p.Phone
	u.Avatar = p.Avatar
	u.Role = p.Role
	u.IsActive = p.IsActive
}

// Update replaces the editable attributes
func (u *User) Update(p UserParams, now time.Time) error {
	if err := p.validate(); err != nil {
		return err
	}
	u.apply(p)
	u.UpdatedAt = now
	u.IncrementVersion()
	return nil
}

// NormalizeEmail lowercases and trims an address for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks the password policy
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewValidationError("Mot de passe trop court",
			shared.ErrorDetail{Field: "password", Message: "Au moins 8 caractères"})
	}
	if len(password) > maxPasswordLength {
		return shared.NewValidationError("Mot de passe trop long",
			shared.ErrorDetail{Field: "password", Message: "72 caractères maximum"})
	}
	return nil
}

func (u *User) setPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// SetPassword replaces the password without checking the old one (admin reset)
func (u *User) SetPassword(password string, now time.Time) error {
	if err := u.setPassword(password); err != nil {
		return err
	}
	u.UpdatedAt = now
	u.IncrementVersion()
	return nil
}

// ChangePassword replaces the password after verifying the current one
func (u *User) ChangePassword(current, next string, now time.Time) error {
	if !u.VerifyPassword(current) {
		return ErrWrongPassword
	}
	return u.SetPassword(next, now)
}

// VerifyPassword compares password with the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Authenticate checks the account state and the password
func (u *User) Authenticate(password string) error {
	if !u.VerifyPassword(password) {
		return ErrInvalidCredentials
	}
	if !u.IsActive {
		return ErrAccountDisabled
	}
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(ip string, now time.Time) {
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.UpdatedAt = now
}
