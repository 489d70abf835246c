package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the header carrying the request ID in both directions.
	RequestIDKey = "X-Request-ID"
	// RequestIDContextKey is the gin context key the logger and handlers read.
	RequestIDContextKey = "request_id"
	// MaxRequestIDLength caps request IDs copied from the X-Request-ID header.
	MaxRequestIDLength = 128
)

// RequestID reuses a well-formed X-Request-ID from the caller, or assigns a
// UUID, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sanitizeRequestID(c.GetHeader(RequestIDKey))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDKey, id)
		c.Next()
	}
}

// sanitizeRequestID keeps printable ASCII without spaces, truncated to
// MaxRequestIDLength. Anything else yields "".
func sanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return ""
		}
	}
	return id
}
