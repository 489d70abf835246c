package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
)

// CategoryHandler handles the catalog category tree
type CategoryHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog *catalogapp.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// Tree godoc
// @Summary      Category tree
// @Tags         catalog
// @Produce      json
// @Param        activeOnly query bool false "Hide inactive categories"
// @Success      200 {object} APIResponse[[]catalogapp.CategoryResponse]
// @Security     BearerAuth
// @Router       /catalog/categories [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	h.tree(c, c.Query("activeOnly") == "true")
}

// PublicTree returns the active categories
func (h *CategoryHandler) PublicTree(c *gin.Context) {
	h.tree(c, true)
}

func (h *CategoryHandler) tree(c *gin.Context, activeOnly bool) {
	tree, err := h.catalog.CategoryTree(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// Create godoc
// @Summary      Create a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CategoryRequest true "Category"
// @Success      201 {object} APIResponse[catalogapp.CategoryResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cat)
}

// Update edits a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cat)
}

// Delete godoc
// @Summary      Delete a category
// @Description  Refused while the category has children or items
// @Tags         catalog
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
