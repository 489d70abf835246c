package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Principal is the back office user behind a request.
type Principal struct {
	UserID uuid.UUID
	Role   identity.Role
	Claims *auth.Claims
}

type AuthConfig struct {
	JWT *auth.JWTService
	// Revocations is consulted when set. An unreachable store lets the
	// token through.
	Revocations auth.TokenBlacklist
	// Public paths are served without a token; an entry ending in "/"
	// covers everything below it.
	Public []string
	Logger *zap.Logger
}

// DefaultAuthConfig opens health, login, refresh, the docs and the
// storefront API.
func DefaultAuthConfig(jwt *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWT: jwt,
		Public: []string{
			"/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/swagger/",
			"/api/v1/public/",
		},
	}
}

// Authenticator turns bearer access tokens into a Principal.
type Authenticator struct {
	jwt         *auth.JWTService
	revocations auth.TokenBlacklist
	exact       map[string]bool
	prefixes    []string
	log         *zap.Logger
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	a := &Authenticator{
		jwt:         cfg.JWT,
		revocations: cfg.Revocations,
		exact:       make(map[string]bool),
		log:         cfg.Logger,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	for _, p := range cfg.Public {
		if strings.HasSuffix(p, "/") {
			a.prefixes = append(a.prefixes, p)
		} else {
			a.exact[p] = true
		}
	}
	return a
}

func (a *Authenticator) public(path string) bool {
	if a.exact[path] {
		return true
	}
	for _, p := range a.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Require answers 401 unless the request carries a valid, unrevoked access
// token. Public paths pass untouched.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.public(c.Request.URL.Path) {
			c.Next()
			return
		}
		claims, err := a.authenticate(c)
		if err != nil {
			a.log.Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			rejectToken(c, err)
			return
		}
		attach(c, claims)
		c.Next()
	}
}

// Optional attaches the caller when a good token is sent and never rejects.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := a.authenticate(c); err == nil {
			attach(c, claims)
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (*auth.Claims, error) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := a.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if a.revocations == nil {
		return claims, nil
	}

	ctx := c.Request.Context()
	revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
	if err == nil && !revoked {
		revoked, err = a.revocations.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	}
	switch {
	case err != nil:
		a.log.Error("Token revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
	case revoked:
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

func rejectToken(c *gin.Context, err error) {
	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, code, msg)
}

// attach records the principal on the gin context, and the user on the
// request context for logs and audit entries.
func attach(c *gin.Context, claims *auth.Claims) {
	id, _ := claims.UserUUID()
	SetPrincipal(c, Principal{UserID: id, Role: identity.Role(claims.Role), Claims: claims})

	ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
	if id != uuid.Nil {
		ctx = audit.ContextWithActor(ctx, audit.Actor{
			UserID:    &id,
			Email:     claims.Email,
			Name:      claims.Name,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
	}
	c.Request = c.Request.WithContext(ctx)
}

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal is false on anonymous requests.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	p, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := p.(Principal)
	return principal, ok
}

func CurrentClaims(c *gin.Context) *auth.Claims {
	p, _ := CurrentPrincipal(c)
	return p.Claims
}

// CurrentUserID is uuid.Nil when anonymous.
func CurrentUserID(c *gin.Context) uuid.UUID {
	p, _ := CurrentPrincipal(c)
	return p.UserID
}

// CurrentRole is empty when anonymous.
func CurrentRole(c *gin.Context) identity.Role {
	p, _ := CurrentPrincipal(c)
	return p.Role
}
