package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
)

// unprofiledPrefixes are probes and docs, which would only add noise.
var unprofiledPrefixes = []string{"/health", "/swagger", "/uploads/"}

// Profiling labels the CPU and allocation samples taken while a request runs
// with its method, route and resource, so flame graphs can be filtered to a
// single endpoint.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range unprofiledPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// ProfilingAttributeInjector adds the caller's role to the labels. Mount it
// after the JWT middleware.
func ProfilingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := callerRole(c)
		if role == "" {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), map[string]string{telemetry.ProfilingLabelRole: role}, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	labels := map[string]string{telemetry.ProfilingLabelMethod: c.Request.Method}
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if resource := routeResource(route); resource != "" {
		labels[telemetry.ProfilingLabelController] = resource
	}
	return labels
}

// routeResource is the first static segment after /api/vN, skipping the
// public and admin scopes: "/api/v1/public/items/:slug" gives "items".
func routeResource(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return ""
	}
	for _, seg := range strings.Split(rest, "/") {
		switch {
		case seg == "", seg == "public", seg == "admin", isAPIVersion(seg):
		case strings.HasPrefix(seg, ":"), strings.HasPrefix(seg, "*"):
			return ""
		default:
			return seg
		}
	}
	return ""
}

func isAPIVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
