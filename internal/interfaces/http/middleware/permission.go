package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, err error)
}

// RequirePermission requires the role of the caller to grant action on resource
func RequirePermission(resource identity.Resource, action identity.Action) gin.HandlerFunc {
	return RequirePermissionWithConfig(resource, action, PermissionConfig{})
}

// RequirePermissionWithConfig creates middleware with custom config
func RequirePermissionWithConfig(resource identity.Resource, action identity.Action, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorize(c, cfg, action, resource)
	}
}

// RequireResource checks permission for a resource with the action derived
// from the HTTP method:
// - GET -> view
// - POST -> create
// - PUT/PATCH -> edit
// - DELETE -> delete
func RequireResource(resource identity.Resource) gin.HandlerFunc {
	return RequireResourceWithConfig(resource, PermissionConfig{})
}

// RequireResourceWithConfig creates middleware with custom config
func RequireResourceWithConfig(resource identity.Resource, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorize(c, cfg, identity.ActionForMethod(c.Request.Method), resource)
	}
}

// RequireAdminAccess lets every active back office role through except READONLY
func RequireAdminAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if !role.HasAdminAccess() {
			handlePermissionDenied(c, PermissionConfig{}, shared.NewDomainError(identity.CodePermissionDenied, "Permission denied: admin access required"))
			return
		}
		c.Next()
	}
}

// RequireRole restricts a route to the listed roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		handlePermissionDenied(c, PermissionConfig{}, shared.NewDomainError(identity.CodePermissionDenied, "Permission denied: role "+string(role)+" is not allowed"))
	}
}

func authorize(c *gin.Context, cfg PermissionConfig, action identity.Action, resource identity.Resource) {
	role := CurrentRole(c)
	if err := role.Authorize(action, resource); err != nil {
		handlePermissionDenied(c, cfg, err)
		return
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("Permission check passed",
			zap.Stringer("user_id", CurrentUserID(c)),
			zap.String("role", string(role)),
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
		)
	}
	c.Next()
}

// handlePermissionDenied answers 401 for anonymous callers and 403 otherwise
func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, err error) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, err)
		return
	}

	code, message := identity.CodePermissionDenied, err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		code, message = de.Code, de.Message
	}
	status := http.StatusForbidden
	if code == "UNAUTHORIZED" {
		status = http.StatusUnauthorized
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.Stringer("user_id", CurrentUserID(c)),
			zap.String("role", string(CurrentRole(c))),
			zap.String("reason", message),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	abortWithError(c, status, code, message)
}
