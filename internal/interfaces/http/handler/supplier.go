package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
)

// SupplierHandler handles wood and hardware suppliers
type SupplierHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(catalog *catalogapp.CatalogService) *SupplierHandler {
	return &SupplierHandler{catalog: catalog}
}

// List godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        search query string false "Search"
// @Param        activeOnly query bool false "Active suppliers only"
// @Success      200 {object} APIResponse[[]catalog.Supplier]
// @Security     BearerAuth
// @Router       /catalog/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var req catalogapp.SupplierListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.catalog.ListSuppliers(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Get returns one supplier
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	s, err := h.catalog.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Create registers a supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req catalogapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.catalog.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, s)
}

// Update edits a supplier
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.catalog.UpdateSupplier(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Delete removes a supplier, or deactivates it when items still reference it
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
