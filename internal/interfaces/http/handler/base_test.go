package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", nil)
	assert.Empty(t, getRequestID(c))

	c.Request.Header.Set(middleware.RequestIDKey, "header-id")
	assert.Equal(t, "header-id", getRequestID(c))

	c.Set("request_id", "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestBaseHandler_ParseID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()

	c, _ := newTestContext(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.parseID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	c, w := newTestContext(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok = h.parseID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}

	c, _ := newTestContext(http.MethodPost, "/", []byte(`{"name":"Chêne"}`))
	var ok body
	assert.True(t, h.bindJSON(c, &ok))
	assert.Equal(t, "Chêne", ok.Name)

	c, w := newTestContext(http.MethodPost, "/", []byte(`{}`))
	var missing body
	assert.False(t, h.bindJSON(c, &missing))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/", []byte(`{`))
	var broken body
	assert.False(t, h.bindJSON(c, &broken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryInt(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/?limit=25&page=x", nil)
	assert.Equal(t, 25, queryInt(c, "limit", 10))
	assert.Equal(t, 1, queryInt(c, "page", 1))
	assert.Equal(t, 7, queryInt(c, "missing", 7))
}

func TestCurrentUserID(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", nil)
	assert.Nil(t, currentUserID(c))
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/", nil)
	h.Success(c, gin.H{"ok": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	c, w = newTestContext(http.MethodPost, "/", nil)
	h.Created(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodDelete, "/", nil)
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestPaginated(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", nil)
	page := shared.NewPaginated([]string{"a", "b"}, 12, 2, 2)
	Paginated(c, &page)

	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalPages)
	assert.Len(t, resp.Data, 2)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", shared.NotFound("Client non trouvé"), http.StatusNotFound, shared.CodeNotFound},
		{"suffix not found", shared.NewDomainError("LEAD_NOT_FOUND", "x"), http.StatusNotFound, "LEAD_NOT_FOUND"},
		{"already exists", shared.NewDomainError("SKU_EXISTS", "x"), http.StatusConflict, "SKU_EXISTS"},
		{"in use", shared.NewDomainError("CATEGORY_IN_USE", "x"), http.StatusConflict, "CATEGORY_IN_USE"},
		{"locked document", shared.NewDomainError(dto.ErrCodeDocumentLocked, "x"), http.StatusConflict, dto.ErrCodeDocumentLocked},
		{"business rule", shared.NewDomainError("OVERPAYMENT", "x"), http.StatusBadRequest, "OVERPAYMENT"},
		{"wrapped", errors.Join(errors.New("ctx"), shared.NotFound("x")), http.StatusNotFound, shared.CodeNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/", nil)
			c.Set("request_id", "req-1")
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_ValidationDetails(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodPost, "/", nil)
	h.HandleError(c, shared.NewValidationError("Données invalides",
		shared.ErrorDetail{Field: "email", Message: "Email invalide"}))

	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestBaseHandler_HandleError_RateLimited(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodPost, "/", nil)
	h.HandleError(c, &publicform.LimitError{RetryAfter: 90 * time.Second})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decode(t, w).Error.Code)
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/", nil)
	h.HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}
