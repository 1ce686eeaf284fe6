package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs each HTTP request with method, path, status, latency and
// client details, tagged with the correlation ID when present.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestLogger := logger
		if correlationID := GetCorrelationID(c); correlationID != "" {
			requestLogger = logger.With("correlation_id", correlationID)
		}

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		requestLogger.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}
