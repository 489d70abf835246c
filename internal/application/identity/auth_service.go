// Package identity runs back office sessions and user administration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Session errors
var (
	ErrTokenExpired = shared.NewDomainError("TOKEN_EXPIRED", "Session expirée, veuillez vous reconnecter")
	ErrTokenInvalid = shared.NewDomainError("TOKEN_INVALID", "Jeton de session invalide")
	ErrTokenRevoked = shared.NewDomainError("TOKEN_REVOKED", "Cette session a été révoquée")
)

// AuthService handles login, token refresh, logout and password changes
type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	auditRepo audit.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	auditRepo audit.Repository,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the clock used for login timestamps
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Login authenticates by email and password and opens a session
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*SessionResponse, error) {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("login for unknown email", zap.String("email", req.Email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := user.Authenticate(req.Password); err != nil {
		s.logger.Warn("login rejected", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	pair, err := s.tokens.GenerateTokenPair(subjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	user.RecordLogin(ip, s.now())
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionLogin, audit.EntityUser, &user.ID, "Connexion de "+user.Email).
			Classify(audit.CategorySystem, audit.SeverityInfo).
			By(&user.ID))

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &SessionResponse{TokenPair: *pair, User: ToUserResponse(user)}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, identity.ErrAccountDisabled
	}

	pair, err := s.tokens.GenerateTokenPair(subjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		s.logger.Error("failed to revoke rotated refresh token", zap.Error(err))
	}
	return &SessionResponse{TokenPair: *pair, User: ToUserResponse(user)}, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// Logout revokes the current access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	now := s.now()
	if err := s.blacklist.Revoke(ctx, access.ID, access.RemainingTTL(now)); err != nil {
		return err
	}
	if refreshToken != "" {
		claims, err := s.tokens.ValidateRefreshToken(refreshToken)
		switch {
		case err != nil:
			s.logger.Debug("ignoring invalid refresh token on logout", zap.Error(err))
		case claims.UserID != access.UserID:
			return ErrTokenInvalid
		default:
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(now)); err != nil {
				return err
			}
		}
	}

	if id, err := access.UserUUID(); err == nil {
		appaudit.Write(ctx, s.auditRepo, s.logger,
			audit.New(audit.ActionLogout, audit.EntityUser, &id, "Déconnexion de "+access.Email).
				Classify(audit.CategorySystem, audit.SeverityInfo).
				By(&id))
	}
	return nil
}

// Me returns the current user and their permissions
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{
		User:           ToUserResponse(user),
		Permissions:    user.Role.Permissions(),
		HasAdminAccess: user.Role.HasAdminAccess(),
	}, nil
}

// ChangePassword replaces the password and revokes every open session
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword, s.now()); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokens.RefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke sessions after password change", zap.Error(err))
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionUpdate, audit.EntityUser, &user.ID, "Mot de passe modifié").
			Classify(audit.CategorySystem, audit.SeverityWarning).
			By(&user.ID))
	return nil
}

func subjectOf(u *identity.User) auth.Subject {
	return auth.Subject{UserID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}
