package handler

import (
	"github.com/gin-gonic/gin"
	crmapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
)

// AppointmentHandler handles the calendar
type AppointmentHandler struct {
	BaseHandler
	appointments *crmapp.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(appointments *crmapp.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// List godoc
// @Summary      List appointments
// @Tags         appointments
// @Produce      json
// @Param        startDate query string false "From (YYYY-MM-DD)"
// @Param        endDate query string false "To (YYYY-MM-DD)"
// @Param        type query string false "Type"
// @Param        status query string false "Status"
// @Success      200 {object} APIResponse[[]crmapp.AppointmentResponse]
// @Security     BearerAuth
// @Router       /crm/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	var req crmapp.AppointmentListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.appointments.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Create godoc
// @Summary      Schedule an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        request body crmapp.AppointmentRequest true "Appointment"
// @Success      201 {object} APIResponse[crmapp.AppointmentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /crm/appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req crmapp.AppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.appointments.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// Get returns one appointment
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Update reschedules or edits an appointment
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.AppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.appointments.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// ChangeStatus confirms, completes or cancels an appointment
func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.appointments.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Delete removes an appointment
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.appointments.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
