package handler

import (
	"github.com/gin-gonic/gin"
	settingapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/setting"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// SettingHandler handles the site settings groups
type SettingHandler struct {
	BaseHandler
	settings *settingapp.SettingService
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settings *settingapp.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// Public returns the groups the website may read
func (h *SettingHandler) Public(c *gin.Context) {
	res, err := h.settings.Public(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// PublicGroup returns one public group
func (h *SettingHandler) PublicGroup(c *gin.Context) {
	h.group(c, false)
}

// All returns every group merged over its defaults
func (h *SettingHandler) All(c *gin.Context) {
	res, err := h.settings.All(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Group returns one group, private ones included
func (h *SettingHandler) Group(c *gin.Context) {
	h.group(c, true)
}

func (h *SettingHandler) group(c *gin.Context, authenticated bool) {
	res, err := h.settings.Group(c.Request.Context(), c.Param("group"), authenticated)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Update godoc
// @Summary      Update a settings group
// @Description  Keys are merged into the stored group; unknown groups are refused
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        group path string true "Group name"
// @Param        request body map[string]any true "Values"
// @Success      200 {object} APIResponse[settingapp.UpdateResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings/{group} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var values map[string]any
	if !h.bindJSON(c, &values) {
		return
	}
	res, err := h.settings.Update(c.Request.Context(), c.Param("group"), values, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Reset restores a group to its defaults
func (h *SettingHandler) Reset(c *gin.Context) {
	res, err := h.settings.Reset(c.Request.Context(), c.Param("group"), currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// SettingRoutes creates the admin route group for settings
func SettingRoutes(h *SettingHandler) *router.DomainGroup {
	view := middleware.RequirePermission(identity.ResourceSettings, identity.ActionView)
	edit := middleware.RequirePermission(identity.ResourceSettings, identity.ActionEdit)
	g := router.NewDomainGroup("settings", "/settings")
	g.GET("", view, h.All)
	g.GET("/:group", view, h.Group)
	g.PUT("/:group", edit, h.Update)
	g.DELETE("/:group", edit, h.Reset)
	return g
}
