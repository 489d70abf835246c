package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes added on top of the otelgin server span.
const (
	spanAttrRequestID = "request_id"
	spanAttrUserID    = "user_id"
	spanAttrUserRole  = "user_role"
)

// Tracing opens a server span per request, named after the matched route
// ("GET /api/v1/documents/:id"), and tags it with the request ID. Health
// probes are not traced. Use it as engine.Use(middleware.Tracing(name)...).
func Tracing(serviceName string) []gin.HandlerFunc {
	base := otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool { return c.Request.URL.Path != "/health" }),
	)
	tagRequest := func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			if id := requestIDFrom(c); id != "" {
				span.SetAttributes(attribute.String(spanAttrRequestID, id))
			}
		}
		c.Next()
	}
	return []gin.HandlerFunc{base, tagRequest}
}

// TracingAttributeInjector tags the request span with the caller. Mount it
// after the JWT middleware so the claims are in the context.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := CurrentUserID(c); id != uuid.Nil {
				span.SetAttributes(attribute.String(spanAttrUserID, id.String()))
			}
			if role := callerRole(c); role != "" {
				span.SetAttributes(attribute.String(spanAttrUserRole, role))
			}
		}
		c.Next()
	}
}
