package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	uploadapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/upload"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// maxUploadFiles bounds a multi-file upload
const maxUploadFiles = 20

// UploadHandler handles media uploads
type UploadHandler struct {
	BaseHandler
	uploads *uploadapp.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploads *uploadapp.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// DeleteUploadRequest names the file to delete by key or URL
type DeleteUploadRequest struct {
	URL string `json:"url" binding:"required"`
}

// Constraints returns the accepted types and the size limit
func (h *UploadHandler) Constraints(c *gin.Context) {
	h.Success(c, h.uploads.Constraints())
}

// Upload godoc
// @Summary      Upload a file
// @Description  Images, videos, PDF and office documents; the type is sniffed from the content
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "File"
// @Param        folder formData string false "Target folder"
// @Success      201 {object} APIResponse[uploadapp.Result]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.HandleError(c, uploadapp.ErrNoFile)
		return
	}
	f, err := h.read(fh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	res, err := h.uploads.Upload(c.Request.Context(), f, c.PostForm("folder"), currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// UploadMany stores several files sent in the files field
func (h *UploadHandler) UploadMany(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		h.HandleError(c, uploadapp.ErrNoFile)
		return
	}
	headers := form.File["files"]
	if len(headers) > maxUploadFiles {
		h.HandleError(c, shared.NewValidationError("Trop de fichiers",
			shared.ErrorDetail{Field: "files", Message: "20 fichiers maximum"}))
		return
	}
	files := make([]uploadapp.File, 0, len(headers))
	for _, fh := range headers {
		f, err := h.read(fh)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		files = append(files, f)
	}
	res, err := h.uploads.UploadMany(c.Request.Context(), files, c.PostForm("folder"), currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// Delete removes a stored file
func (h *UploadHandler) Delete(c *gin.Context) {
	var req DeleteUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.uploads.Delete(c.Request.Context(), req.URL, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// read loads a multipart file, refusing it past the size limit
func (h *UploadHandler) read(fh *multipart.FileHeader) (uploadapp.File, error) {
	max := h.uploads.MaxSize()
	if fh.Size > max {
		return uploadapp.File{}, shared.NewDomainErrorf(uploadapp.CodeTooLarge, "Fichier trop volumineux. Maximum: %dMB", max>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return uploadapp.File{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, max+1))
	if err != nil {
		return uploadapp.File{}, err
	}
	if int64(len(data)) > max {
		return uploadapp.File{}, shared.NewDomainErrorf(uploadapp.CodeTooLarge, "Fichier trop volumineux. Maximum: %dMB", max>>20)
	}
	return uploadapp.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// limitBody caps the request size at the upload limit plus multipart overhead
func (h *UploadHandler) limitBody(c *gin.Context) {
	limit := h.uploads.MaxSize()*maxUploadFiles + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	c.Next()
}

// UploadRoutes creates the route group for uploads
func UploadRoutes(h *UploadHandler) *router.DomainGroup {
	media := middleware.RequireResource(identity.ResourceMedia)
	g := router.NewDomainGroup("uploads", "/uploads")
	g.GET("/constraints", h.Constraints)
	g.POST("", media, h.limitBody, h.Upload)
	g.POST("/batch", media, h.limitBody, h.UploadMany)
	g.DELETE("", media, h.Delete)
	return g
}
