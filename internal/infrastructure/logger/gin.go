package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ginRequestIDKey is where the request id middleware leaves the id.
const ginRequestIDKey = "request_id"

// AccessLog puts base on the request context and writes one line per
// request once it is served. Successful requests to a quiet path are not
// logged.
func AccessLog(base *zap.Logger, quiet ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request
		ctx := WithContext(req.Context(), base.With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path)))
		c.Request = req.WithContext(WithRequestID(ctx, c.GetString(ginRequestIDKey)))

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest && slices.Contains(quiet, req.URL.Path) {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", req.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := req.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		// c.Request now carries the user set by authentication.
		if ce := L(c.Request.Context()).Check(statusLevel(status), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a logged 500 in the JSON error
// envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		requestID := c.GetString(ginRequestIDKey)
		log.Error("Panic recovered",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("error", err),
			zap.Stack("stacktrace"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":       "INTERNAL_ERROR",
				"message":    "Erreur interne du serveur",
				"request_id": requestID,
			},
		})
	})
}
