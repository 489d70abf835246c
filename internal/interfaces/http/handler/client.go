package handler

import (
	"github.com/gin-gonic/gin"
	crmapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
)

// ClientHandler handles CRM clients
type ClientHandler struct {
	BaseHandler
	clients *crmapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients *crmapp.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        clientType query string false "PARTICULIER or ENTREPRISE"
// @Param        city query string false "City"
// @Param        tag query string false "Tag"
// @Param        search query string false "Name, number, phone or email"
// @Success      200 {object} APIResponse[[]crmapp.ClientResponse]
// @Security     BearerAuth
// @Router       /crm/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var req crmapp.ClientListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.clients.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Create godoc
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body crmapp.ClientRequest true "Client"
// @Success      201 {object} APIResponse[crmapp.ClientResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req crmapp.ClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update replaces the client fields
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @Summary      Delete a client
// @Description  Refused while the client has documents or projects
// @Tags         clients
// @Param        id path string true "Client ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance returns invoiced, paid and outstanding amounts of a client
func (h *ClientHandler) Balance(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	balance, err := h.clients.Balance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Payments lists every payment received from a client
func (h *ClientHandler) Payments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.clients.Payments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
