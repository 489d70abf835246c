package handler

import (
	"github.com/gin-gonic/gin"
	cmsapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/cms"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// ContentHandler handles the website content: testimonials, showcase
// projects, hero slides and page sections
type ContentHandler struct {
	BaseHandler
	content *cmsapp.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content *cmsapp.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) listRequest(c *gin.Context) (cmsapp.ListRequest, bool) {
	var req cmsapp.ListRequest
	return req, h.bindQuery(c, &req)
}

func (h *ContentHandler) reply(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Testimonials godoc
// @Summary      List testimonials
// @Tags         public
// @Produce      json
// @Param        featured query bool false "Featured only"
// @Param        limit query int false "Maximum count"
// @Success      200 {object} APIResponse[[]cmsapp.TestimonialResponse]
// @Router       /public/testimonials [get]
func (h *ContentHandler) Testimonials(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListTestimonials(c.Request.Context(), req, true)
		h.reply(c, res, err)
	}
}

// AdminTestimonials lists every testimonial, inactive ones included
func (h *ContentHandler) AdminTestimonials(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListTestimonials(c.Request.Context(), req, false)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) GetTestimonial(c *gin.Context) {
	if id, ok := h.parseID(c, "id"); ok {
		res, err := h.content.GetTestimonial(c.Request.Context(), id)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) CreateTestimonial(c *gin.Context) {
	var req cmsapp.TestimonialRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.CreateTestimonial(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func (h *ContentHandler) UpdateTestimonial(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req cmsapp.TestimonialRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.UpdateTestimonial(c.Request.Context(), id, req)
	h.reply(c, res, err)
}

func (h *ContentHandler) DeleteTestimonial(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteTestimonial(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Projects godoc
// @Summary      List showcase projects
// @Tags         public
// @Produce      json
// @Param        category query string false "Category"
// @Param        featured query bool false "Featured only"
// @Success      200 {object} APIResponse[[]cmsapp.ProjectResponse]
// @Router       /public/projects [get]
func (h *ContentHandler) Projects(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListProjects(c.Request.Context(), req, true)
		h.reply(c, res, err)
	}
}

// ProjectBySlug returns an active showcase project
func (h *ContentHandler) ProjectBySlug(c *gin.Context) {
	res, err := h.content.GetProjectBySlug(c.Request.Context(), c.Param("slug"))
	h.reply(c, res, err)
}

func (h *ContentHandler) AdminProjects(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListProjects(c.Request.Context(), req, false)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) GetProject(c *gin.Context) {
	if id, ok := h.parseID(c, "id"); ok {
		res, err := h.content.GetProject(c.Request.Context(), id)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) CreateProject(c *gin.Context) {
	var req cmsapp.ProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func (h *ContentHandler) UpdateProject(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req cmsapp.ProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.UpdateProject(c.Request.Context(), id, req)
	h.reply(c, res, err)
}

func (h *ContentHandler) DeleteProject(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteProject(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MergeProjects godoc
// @Summary      Merge duplicate showcase projects
// @Description  Images of the sources move to the target, testimonials are relinked and the sources deleted
// @Tags         cms
// @Accept       json
// @Produce      json
// @Param        request body cmsapp.MergeRequest true "Target and sources"
// @Success      200 {object} APIResponse[cmsapp.ProjectResponse]
// @Security     BearerAuth
// @Router       /cms/projects/merge [post]
func (h *ContentHandler) MergeProjects(c *gin.Context) {
	var req cmsapp.MergeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.MergeProjects(c.Request.Context(), req)
	h.reply(c, res, err)
}

// Slides returns the active hero slides of a page
func (h *ContentHandler) Slides(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListSlides(c.Request.Context(), req, true)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) AdminSlides(c *gin.Context) {
	if req, ok := h.listRequest(c); ok {
		res, err := h.content.ListSlides(c.Request.Context(), req, false)
		h.reply(c, res, err)
	}
}

func (h *ContentHandler) CreateSlide(c *gin.Context) {
	var req cmsapp.SlideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.CreateSlide(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func (h *ContentHandler) UpdateSlide(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req cmsapp.SlideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.UpdateSlide(c.Request.Context(), id, req)
	h.reply(c, res, err)
}

func (h *ContentHandler) DeleteSlide(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteSlide(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reorder stores a new display order for one kind of content
func (h *ContentHandler) Reorder(kind cms.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cmsapp.ReorderRequest
		if !h.bindJSON(c, &req) {
			return
		}
		if err := h.content.Reorder(c.Request.Context(), kind, req); err != nil {
			h.HandleError(c, err)
			return
		}
		h.NoContent(c)
	}
}

// Sections returns the active sections of a page
func (h *ContentHandler) Sections(c *gin.Context) {
	res, err := h.content.Sections(c.Request.Context(), c.Param("page"), true)
	h.reply(c, res, err)
}

func (h *ContentHandler) AdminSections(c *gin.Context) {
	res, err := h.content.Sections(c.Request.Context(), c.Param("page"), false)
	h.reply(c, res, err)
}

// SaveSections godoc
// @Summary      Save page sections
// @Description  Sections are upserted by key; sections not listed are kept
// @Tags         cms
// @Accept       json
// @Produce      json
// @Param        page path string true "Page slug"
// @Param        request body cmsapp.SectionsRequest true "Sections"
// @Success      200 {object} APIResponse[[]cmsapp.SectionResponse]
// @Security     BearerAuth
// @Router       /cms/pages/{page}/sections [put]
func (h *ContentHandler) SaveSections(c *gin.Context) {
	var req cmsapp.SectionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.content.SaveSections(c.Request.Context(), c.Param("page"), req)
	h.reply(c, res, err)
}

func (h *ContentHandler) DeleteSection(c *gin.Context) {
	if err := h.content.DeleteSection(c.Request.Context(), c.Param("page"), c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ContentRoutes creates the admin route group for website content
func ContentRoutes(h *ContentHandler) *router.DomainGroup {
	media := middleware.RequireResource(identity.ResourceMedia)
	g := router.NewDomainGroup("cms", "/cms")

	g.GET("/testimonials", media, h.AdminTestimonials)
	g.POST("/testimonials", media, h.CreateTestimonial)
	g.GET("/testimonials/:id", media, h.GetTestimonial)
	g.PUT("/testimonials/:id", media, h.UpdateTestimonial)
	g.DELETE("/testimonials/:id", media, h.DeleteTestimonial)

	g.GET("/projects", media, h.AdminProjects)
	g.POST("/projects", media, h.CreateProject)
	g.POST("/projects/merge", media, h.MergeProjects)
	g.GET("/projects/:id", media, h.GetProject)
	g.PUT("/projects/:id", media, h.UpdateProject)
	g.DELETE("/projects/:id", media, h.DeleteProject)

	g.GET("/slides", media, h.AdminSlides)
	g.POST("/slides", media, h.CreateSlide)
	g.PUT("/slides/:id", media, h.UpdateSlide)
	g.DELETE("/slides/:id", media, h.DeleteSlide)

	g.PUT("/testimonials/reorder", media, h.Reorder(cms.KindTestimonial))
	g.PUT("/projects/reorder", media, h.Reorder(cms.KindProject))
	g.PUT("/slides/reorder", media, h.Reorder(cms.KindSlide))

	g.GET("/pages/:page/sections", media, h.AdminSections)
	g.PUT("/pages/:page/sections", media, h.SaveSections)
	g.DELETE("/pages/:page/sections/:key", media, h.DeleteSection)
	return g
}
