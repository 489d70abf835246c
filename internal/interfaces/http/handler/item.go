package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
)

// ItemHandler handles catalog products and services
type ItemHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(catalog *catalogapp.CatalogService) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

// List godoc
// @Summary      List catalog items
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        type query string false "PRODUCT or SERVICE"
// @Param        categoryId query string false "Category ID"
// @Param        lowStock query bool false "Only items under their minimum stock"
// @Param        includeInactive query bool false "Include inactive items"
// @Success      200 {object} APIResponse[[]catalogapp.ItemResponse]
// @Security     BearerAuth
// @Router       /catalog/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	var req catalogapp.ItemListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	h.list(c, req)
}

// PublicList godoc
// @Summary      Browse the catalog
// @Description  Active items only
// @Tags         public
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        type query string false "PRODUCT or SERVICE"
// @Param        categoryId query string false "Category ID"
// @Param        search query string false "Search"
// @Success      200 {object} APIResponse[[]catalogapp.ItemResponse]
// @Router       /public/catalog/items [get]
func (h *ItemHandler) PublicList(c *gin.Context) {
	var req catalogapp.ItemListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	req.IncludeInactive = false
	req.LowStock = false
	req.SupplierID = nil
	h.list(c, req)
}

func (h *ItemHandler) list(c *gin.Context, req catalogapp.ItemListRequest) {
	page, err := h.catalog.ListItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Get returns one item
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// PublicGet returns an active item
func (h *ItemHandler) PublicGet(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetItem(c.Request.Context(), id)
	if err == nil && !item.IsActive {
		err = catalog.ErrItemNotFound
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create godoc
// @Summary      Create a catalog item
// @Description  The SKU is generated (LTB-PRD-NNNN or LTB-SRV-NNNN) when omitted
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ItemRequest true "Item"
// @Success      201 {object} APIResponse[catalogapp.ItemResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalogapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update replaces the fields of an item
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete a catalog item
// @Description  Items referenced by documents or orders are deactivated instead
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[catalogapp.DeleteResult]
// @Security     BearerAuth
// @Router       /catalog/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
