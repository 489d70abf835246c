package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig sets the response hardening headers. Zero values skip the
// corresponding header.
type SecurityConfig struct {
	// HSTSMaxAge in seconds; only set behind TLS.
	HSTSMaxAge        int
	ContentSecurity   string
	PermissionsPolicy string
	// CSPExemptPrefix serves paths under it without Content-Security-Policy.
	CSPExemptPrefix string
}

// The API serves JSON, PDFs and spreadsheets only; nothing is rendered inline.
const (
	apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"
	apiPermissionsPolicy     = "camera=(), geolocation=(), microphone=(), payment=(), usb=()"
)

// Secure adds the hardening headers for an API that renders no HTML.
func Secure() gin.HandlerFunc {
	return SecureWithConfig(SecurityConfig{
		ContentSecurity:   apiContentSecurityPolicy,
		PermissionsPolicy: apiPermissionsPolicy,
		CSPExemptPrefix:   "/swagger/",
	})
}

// SecureWithConfig is Secure with explicit policies, e.g. HSTS in production.
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := http.Header{}
	for k, v := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     cfg.PermissionsPolicy,
	} {
		if v != "" {
			headers.Set(k, v)
		}
	}
	if cfg.HSTSMaxAge > 0 {
		headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(cfg.HSTSMaxAge)+"; includeSubDomains")
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range headers {
			h[k] = v
		}
		// swagger-ui needs its own scripts and styles
		if cfg.ContentSecurity != "" && (cfg.CSPExemptPrefix == "" || !strings.HasPrefix(c.Request.URL.Path, cfg.CSPExemptPrefix)) {
			h.Set("Content-Security-Policy", cfg.ContentSecurity)
		}
		c.Next()
	}
}
