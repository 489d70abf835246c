package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

// abortWithError stops the chain with the standard error envelope.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, requestIDFrom(c)))
}

func requestIDFrom(c *gin.Context) string {
	if id := c.GetString(RequestIDContextKey); id != "" {
		return id
	}
	return sanitizeRequestID(c.GetHeader(RequestIDKey))
}
