package handler

import (
	"github.com/gin-gonic/gin"
	crmapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
)

// ProjectHandler handles workshop projects and their work items
type ProjectHandler struct {
	BaseHandler
	projects *crmapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *crmapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        clientId query string false "Client ID"
// @Param        status query string false "Status"
// @Param        type query string false "FABRICATION, INSTALLATION or BOTH"
// @Success      200 {object} APIResponse[[]crmapp.ProjectResponse]
// @Security     BearerAuth
// @Router       /crm/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var req crmapp.ProjectListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.projects.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, &page)
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body crmapp.ProjectRequest true "Project"
// @Success      201 {object} APIResponse[crmapp.ProjectResponse]
// @Security     BearerAuth
// @Router       /crm/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req crmapp.ProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Get returns a project with its tasks, checklist, journal and media
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update replaces the project fields
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ChangeStatus godoc
// @Summary      Move a project to another stage
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body crmapp.StatusRequest true "Status"
// @Success      200 {object} APIResponse[crmapp.ProjectResponse]
// @Security     BearerAuth
// @Router       /crm/projects/{id}/status [put]
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.ChangeStatus(c.Request.Context(), id, req.Status, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete removes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activities returns the project journal of status changes and notes
func (h *ProjectHandler) Activities(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.projects.Activities(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// AddTask adds a task to a project
func (h *ProjectHandler) AddTask(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.TaskRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.projects.AddTask(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// UpdateTask edits a task
func (h *ProjectHandler) UpdateTask(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "taskId")
	if !ok {
		return
	}
	var req crmapp.TaskRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.projects.UpdateTask(c.Request.Context(), id, taskID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// DeleteTask removes a task
func (h *ProjectHandler) DeleteTask(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "taskId")
	if !ok {
		return
	}
	if err := h.projects.DeleteTask(c.Request.Context(), id, taskID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReorderTasks stores a new task order
func (h *ProjectHandler) ReorderTasks(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ReorderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.ReorderTasks(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// AddChecklistItem adds a checklist line
func (h *ProjectHandler) AddChecklistItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ChecklistRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.projects.AddChecklistItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateChecklistItem edits or ticks a checklist line
func (h *ProjectHandler) UpdateChecklistItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId")
	if !ok {
		return
	}
	var req crmapp.ChecklistRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.projects.UpdateChecklistItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteChecklistItem removes a checklist line
func (h *ProjectHandler) DeleteChecklistItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId")
	if !ok {
		return
	}
	if err := h.projects.DeleteChecklistItem(c.Request.Context(), id, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddJournalEntry writes to the site journal
func (h *ProjectHandler) AddJournalEntry(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.JournalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.projects.AddJournalEntry(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteJournalEntry removes a journal entry
func (h *ProjectHandler) DeleteJournalEntry(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	entryID, ok := h.parseID(c, "entryId")
	if !ok {
		return
	}
	if err := h.projects.DeleteJournalEntry(c.Request.Context(), id, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddMedia attaches an uploaded file to a project
func (h *ProjectHandler) AddMedia(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req crmapp.MediaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.projects.AddMedia(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// DeleteMedia detaches a file
func (h *ProjectHandler) DeleteMedia(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	mediaID, ok := h.parseID(c, "mediaId")
	if !ok {
		return
	}
	if err := h.projects.DeleteMedia(c.Request.Context(), id, mediaID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
