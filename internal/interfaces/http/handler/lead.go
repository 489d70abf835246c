package handler

import (
	"github.com/gin-gonic/gin"
	crmapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
)

// LeadHandler handles the sales pipeline
type LeadHandler struct {
	BaseHandler
	leads *crmapp.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leads *crmapp.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// List godoc
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(50)
// @Param        status query string false "Status"
// @Param        source query string false "Source"
// @Param        urgency query string false "Urgency"
// @Param        search query string false "Name, phone, email or number"
// @Success      200 {object} APIResponse[[]crmapp.LeadResponse]
// @Security     BearerAuth
// @Router       /crm/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var req crmapp.LeadListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.leads.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Stats godoc
// @Summary      Lead counts per status
// @Tags         leads
// @Produce      json
// @Success      200 {object} APIResponse[crmapp.LeadStats]
// @Security     BearerAuth
// @Router       /crm/leads/stats [get]
func (h *LeadHandler) Stats(c *gin.Context) {
	stats, err := h.leads.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Create godoc
// @Summary      Create a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body crmapp.LeadRequest true "Lead"
// @Success      201 {object} APIResponse[crmapp.LeadResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req crmapp.LeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.leads.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lead)
}

// Get returns one lead
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// Update godoc
// @Summary      Update a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID"
// @Param        request body crmapp.LeadRequest true "Lead"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Security     BearerAuth
// @Router       /crm/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.LeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.leads.Update(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// Delete removes a lead
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.leads.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Convert godoc
// @Summary      Convert a lead into a client
// @Description  Optionally opens a project for the new client. A lead converts once.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID"
// @Param        request body crmapp.ConvertLeadRequest false "Project options"
// @Success      201 {object} APIResponse[crmapp.ConvertLeadResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ConvertLeadRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	res, err := h.leads.Convert(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// AddNote appends a note to the lead journal
func (h *LeadHandler) AddNote(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.leads.AddNote(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// Activities returns the lead journal
func (h *LeadHandler) Activities(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.leads.Activities(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
