// Package handler exposes the application services over gin.
package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler carries the response helpers shared by every handler.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDKey)
}

// currentUserID is nil on anonymous calls.
func currentUserID(c *gin.Context) *uuid.UUID {
	id := middleware.CurrentUserID(c)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func (h *BaseHandler) parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Identifiant invalide : "+name)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON and bindQuery answer 400 themselves and report false on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, verrs)
		return
	}
	h.BadRequest(c, "Corps de requête invalide")
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

func (h *BaseHandler) Success(c *gin.Context, data any) { c.JSON(http.StatusOK, dto.NewSuccessResponse(data)) }

// SuccessWithMeta answers 200 with a list and its paging meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func Paginated[T any](c *gin.Context, p *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(p))
}

func (h *BaseHandler) Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, dto.NewSuccessResponse(data)) }

func (h *BaseHandler) NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// Error answers with the error envelope, tagged with the request id.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, msg string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, msg)
}
func (h *BaseHandler) NotFound(c *gin.Context, msg string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, msg)
}
func (h *BaseHandler) Unauthorized(c *gin.Context, msg string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, msg)
}
func (h *BaseHandler) InternalError(c *gin.Context, msg string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, msg)
}

// HandleError maps domain errors onto their status. Anything else is logged
// and answered with a French 500 message that leaks no detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var limitErr *publicform.LimitError
	if errors.As(err, &limitErr) {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limitErr.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited, limitErr.Error(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.FromDomainError(domainErr, requestID))
		return
	}

	logger.L(c.Request.Context()).Error("unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestID),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"Une erreur inattendue est survenue",
		requestID,
	))
}
