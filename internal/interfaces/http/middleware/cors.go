package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig lists the storefront and back office origins allowed to call
// the API from a browser.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORSWithConfig builds the CORS middleware. With no origins configured no
// CORS headers are sent and browsers refuse cross-origin calls. A "*" entry
// allows any origin without credentials.
func CORSWithConfig(cfg CORSConfig) (gin.HandlerFunc, error) {
	if len(cfg.AllowOrigins) == 0 {
		return passThrough, nil
	}

	cc := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return cors.New(cc), nil
}
