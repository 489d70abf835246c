package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identity.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[identity.SessionResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the current access token and optionally the refresh token
// @Tags         auth
// @Accept       json
// @Param        request body identity.LogoutRequest false "Refresh token to revoke"
// @Success      204
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentification requise")
		return
	}
	var req identity.LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the current user with the permissions of their role
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == uuid.Nil {
		h.Unauthorized(c, "Authentification requise")
		return
	}
	res, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Every open session is revoked once the password changes
// @Tags         auth
// @Accept       json
// @Param        request body identity.ChangePasswordRequest true "Passwords"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == uuid.Nil {
		h.Unauthorized(c, "Authentification requise")
		return
	}
	var req identity.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AuthRoutes creates the route group for authentication. Login and refresh
// are exempt from JWT checks in the middleware configuration; the limiter,
// when given, throttles them per client IP.
func AuthRoutes(h *AuthHandler, limiter *middleware.RateLimiter) *router.DomainGroup {
	g := router.NewDomainGroup("auth", "/auth")
	if limiter != nil {
		throttle := middleware.AuthRateLimit(limiter)
		g.POST("/login", throttle, h.Login)
		g.POST("/refresh", throttle, h.Refresh)
	} else {
		g.POST("/login", h.Login)
		g.POST("/refresh", h.Refresh)
	}
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
	g.PUT("/password", h.ChangePassword)
	return g
}
