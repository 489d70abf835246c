package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/api/v1/documents", func(c *gin.Context) {
		seen = c.GetString(RequestIDContextKey)
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated when absent", "", false},
		{"caller id kept", "atelier-7f3a", true},
		{"control characters rejected", "bad\nid", false},
		{"spaces rejected", "two words", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
			if tt.header != "" {
				req.Header[RequestIDKey] = []string{tt.header}
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(RequestIDKey))
			if tt.keep {
				assert.Equal(t, tt.header, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}

	t.Run("long ids truncated", func(t *testing.T) {
		assert.Len(t, sanitizeRequestID(strings.Repeat("a", 300)), MaxRequestIDLength)
	})
}

func TestCORSWithConfig(t *testing.T) {
	newRouter := func(t *testing.T, cfg CORSConfig) *gin.Engine {
		t.Helper()
		mw, err := CORSWithConfig(cfg)
		require.NoError(t, err)
		router := gin.New()
		router.Use(mw)
		router.GET("/api/v1/public/items", okHandler)
		return router
	}
	preflight := func(router *gin.Engine, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/public/items", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://letatchebois.ma"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	t.Run("listed origin", func(t *testing.T) {
		rec := preflight(newRouter(t, cfg), "https://letatchebois.ma")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://letatchebois.ma", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		rec := preflight(newRouter(t, cfg), "https://evil.example")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard drops credentials", func(t *testing.T) {
		wild := cfg
		wild.AllowOrigins = []string{"*"}
		rec := preflight(newRouter(t, wild), "https://anything.example")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("no origins sends no headers", func(t *testing.T) {
		router := newRouter(t, CORSConfig{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/items", nil)
		req.Header.Set("Origin", "https://letatchebois.ma")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin without scheme is rejected", func(t *testing.T) {
		_, err := CORSWithConfig(CORSConfig{AllowOrigins: []string{"letatchebois.ma"}})
		assert.Error(t, err)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/api/v1/documents/:id/pdf", okHandler)
	router.GET("/swagger/*any", okHandler)

	rec := serve(router, http.MethodGet, "/api/v1/documents/1/pdf", "")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = serve(router, http.MethodGet, "/swagger/index.html", "")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	hsts := gin.New()
	hsts.Use(SecureWithConfig(SecurityConfig{HSTSMaxAge: 31536000}))
	hsts.GET("/", okHandler)
	rec = serve(hsts, http.MethodGet, "/", "")
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(16, "/api/v1/uploads"))
	readAll := func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	}
	router.POST("/api/v1/public/quote-requests", readAll)
	router.POST("/api/v1/uploads", readAll)

	post := func(path, body string, chunked bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if chunked {
			req.ContentLength = -1
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, post("/api/v1/public/quote-requests", "petit", false).Code)

	rec := post("/api/v1/public/quote-requests", strings.Repeat("x", 64), false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, ErrCodeRequestTooLarge, errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get(RequestIDKey))

	assert.Equal(t, http.StatusRequestEntityTooLarge, post("/api/v1/public/quote-requests", strings.Repeat("x", 64), true).Code)
	assert.Equal(t, http.StatusOK, post("/api/v1/uploads", strings.Repeat("x", 64), false).Code)
}

func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) {
		abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentification requise")
	}
	newRouter := func(t *testing.T, cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
		t.Helper()
		guard, err := SwaggerProtection(cfg, jwt)
		require.NoError(t, err)
		router := gin.New()
		router.GET("/swagger/*any", guard, okHandler)
		return router
	}
	fromIP := func(router *gin.Engine, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("disabled", func(t *testing.T) {
		rec := fromIP(newRouter(t, SwaggerConfig{}, nil), "10.0.0.5")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, rec))
	})

	t.Run("open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, fromIP(newRouter(t, SwaggerConfig{Enabled: true}, denyAll), "203.0.113.9").Code)
	})

	t.Run("allow list", func(t *testing.T) {
		router := newRouter(t, SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.10.0/24", "203.0.113.9"}}, nil)
		assert.Equal(t, http.StatusOK, fromIP(router, "192.168.10.42").Code)
		assert.Equal(t, http.StatusOK, fromIP(router, "203.0.113.9").Code)
		rec := fromIP(router, "198.51.100.1")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, rec))
	})

	t.Run("auth runs after the allow list", func(t *testing.T) {
		router := newRouter(t, SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.0/8"}}, denyAll)
		assert.Equal(t, http.StatusForbidden, fromIP(router, "198.51.100.1").Code)
		assert.Equal(t, http.StatusUnauthorized, fromIP(router, "10.1.2.3").Code)
	})

	t.Run("bad allow list entry", func(t *testing.T) {
		_, err := SwaggerProtection(SwaggerConfig{Enabled: true, AllowedIPs: []string{"atelier"}}, nil)
		assert.Error(t, err)
	})
}
