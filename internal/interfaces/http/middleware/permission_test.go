package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRBACRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(NewAuthenticator(DefaultAuthConfig(newTestJWTService())).Require())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	products := router.Group("/api/v1/products", RequireResource(identity.ResourceProducts))
	products.GET("", ok)
	products.POST("", ok)
	products.DELETE("/:id", ok)

	router.GET("/api/v1/reports/export", RequirePermission(identity.ResourceReports, identity.ActionCreate), ok)
	router.GET("/api/v1/dashboard", RequireAdminAccess(), ok)
	router.POST("/api/v1/documents/:id/unlock", RequireRole(identity.RoleAdmin), ok)
	return router
}

func TestRequireResource(t *testing.T) {
	jwtService := newTestJWTService()
	router := newRBACRouter(t)

	tests := []struct {
		name   string
		role   identity.Role
		method string
		path   string
		want   int
	}{
		{"admin manages products", identity.RoleAdmin, http.MethodDelete, "/api/v1/products/1", http.StatusOK},
		{"readonly views products", identity.RoleReadonly, http.MethodGet, "/api/v1/products", http.StatusOK},
		{"readonly cannot create", identity.RoleReadonly, http.MethodPost, "/api/v1/products", http.StatusForbidden},
		{"commercial cannot delete", identity.RoleCommercial, http.MethodDelete, "/api/v1/products/1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, _ := newTestTokenPair(t, jwtService, tt.role)
			rec := serve(router, tt.method, tt.path, pair.AccessToken)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.role.Can(identity.ActionForMethod(tt.method), identity.ResourceProducts), tt.want == http.StatusOK)
		})
	}
}

func TestPermissionDeniedBody(t *testing.T) {
	jwtService := newTestJWTService()
	router := newRBACRouter(t)
	pair, _ := newTestTokenPair(t, jwtService, identity.RoleReadonly)

	rec := serve(router, http.MethodPost, "/api/v1/products", pair.AccessToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, identity.CodePermissionDenied, errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "Permission denied: cannot create products")
}

func TestRequireAdminAccessAndRole(t *testing.T) {
	jwtService := newTestJWTService()
	router := newRBACRouter(t)

	readonly, _ := newTestTokenPair(t, jwtService, identity.RoleReadonly)
	manager, _ := newTestTokenPair(t, jwtService, identity.RoleManager)
	admin, _ := newTestTokenPair(t, jwtService, identity.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/v1/dashboard", readonly.AccessToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/dashboard", manager.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/api/v1/documents/1/unlock", manager.AccessToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/v1/documents/1/unlock", admin.AccessToken).Code)
}

func TestRequirePermission_Anonymous(t *testing.T) {
	router := gin.New()
	router.GET("/open", RequirePermission(identity.ResourceReports, identity.ActionView), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := serve(router, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}
