package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, role identity.Role) (*auth.TokenPair, auth.Subject) {
	t.Helper()
	sub := auth.Subject{UserID: uuid.New(), Email: "atelier@letatchebois.ma", Name: "Rachid", Role: string(role)}
	pair, err := jwtService.GenerateTokenPair(sub)
	require.NoError(t, err)
	return pair, sub
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, sub := newTestTokenPair(t, jwtService, identity.RoleManager)

	router := gin.New()
	router.Use(NewAuthenticator(DefaultAuthConfig(jwtService)).Require())
	router.GET("/api/v1/leads", func(c *gin.Context) {
		claims := CurrentClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, sub.UserID, CurrentUserID(c))
		assert.Equal(t, identity.RoleManager, CurrentRole(c))

		actor, ok := audit.ActorFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, sub.UserID, *actor.UserID)
		assert.Equal(t, sub.Email, actor.Email)
		c.Status(http.StatusOK)
	})

	rec := serve(router, http.MethodGet, "/api/v1/leads", pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticator_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService, identity.RoleAdmin)

	router := gin.New()
	router.Use(NewAuthenticator(DefaultAuthConfig(jwtService)).Require())
	router.GET("/api/v1/leads", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"garbage token", "not.a.jwt", "UNAUTHORIZED"},
		{"refresh token used as access", pair.RefreshToken, "TOKEN_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/api/v1/leads", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAuthenticator_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(NewAuthenticator(DefaultAuthConfig(newTestJWTService())).Require())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/deep", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/public/catalog", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/public/catalog", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/v1/auth/login", "").Code)
	// exact entries do not cover subpaths
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/health/deep", "").Code)
}

func TestAuthenticator_Revocation(t *testing.T) {
	jwtService := newTestJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	cfg := DefaultAuthConfig(jwtService)
	cfg.Revocations = blacklist

	router := gin.New()
	router.Use(NewAuthenticator(cfg).Require())
	router.GET("/api/v1/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("revoked jti", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, identity.RoleAdmin)
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Minute))

		rec := serve(router, http.MethodGet, "/api/v1/me", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
	})

	t.Run("user sessions revoked", func(t *testing.T) {
		pair, sub := newTestTokenPair(t, jwtService, identity.RoleAdmin)
		require.NoError(t, blacklist.RevokeUser(context.Background(), sub.UserID.String(), time.Hour))

		rec := serve(router, http.MethodGet, "/api/v1/me", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthenticator_Optional(t *testing.T) {
	jwtService := newTestJWTService()
	pair, sub := newTestTokenPair(t, jwtService, identity.RoleCommercial)

	router := gin.New()
	router.Use(NewAuthenticator(DefaultAuthConfig(jwtService)).Optional())
	router.GET("/api/v1/public/settings", func(c *gin.Context) {
		if _, ok := CurrentPrincipal(c); !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, CurrentUserID(c).String())
	})

	rec := serve(router, http.MethodGet, "/api/v1/public/settings", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/v1/public/settings", "expired.or.forged")
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/v1/public/settings", pair.AccessToken)
	assert.Equal(t, sub.UserID.String(), rec.Body.String())
}
