package middleware

import (
	"net/http"
	"time"

	"cdr.dev/slog/v3"
	"github.com/gin-gonic/gin"
)

// Logger middleware logs HTTP requests
func Logger(logger slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []slog.Field{
			slog.F("method", c.Request.Method),
			slog.F("path", path),
			slog.F("status", status),
			slog.F("latency", time.Since(start)),
			slog.F("client_ip", c.ClientIP()),
			slog.F("request_id", GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, slog.F("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "request", fields...)
		default:
			logger.Info(ctx, "request", fields...)
		}
	}
}
