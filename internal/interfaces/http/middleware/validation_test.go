package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

type quoteRequestBody struct {
	FullName string  `json:"full_name" binding:"required,min=2"`
	Email    string  `json:"email" binding:"required,email"`
	Service  string  `json:"service" binding:"oneof=porte fenetre escalier"`
	Budget   float64 `json:"budget" binding:"gte=0"`
	Internal string  `json:"-"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/public/quote-requests", func(c *gin.Context) {
		var body quoteRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/quote-requests",
		strings.NewReader(`{"full_name":"A","email":"pas-un-email","service":"table","budget":-5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDKey, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string                 `json:"code"`
			RequestID string                 `json:"request_id"`
			Details   []dto.ValidationDetail `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)

	got := map[string]string{}
	for _, d := range resp.Error.Details {
		got[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"full_name": "Au moins 2 caractères",
		"email":     "Adresse e-mail invalide",
		"service":   "Valeur parmi : porte, fenetre, escalier",
		"budget":    "Doit être supérieur ou égal à 0",
	}, got)
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, validationDetails(assert.AnError))
}
