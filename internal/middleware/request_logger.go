package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbooks/ledgerbooks-api/pkg/logger"
)

// RequestLogger emits one structured log line per request, leveled by
// response status. Health probes are skipped to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if path == "/api/v1/health" {
			return
		}

		if query != "" {
			path = path + "?" + query
		}

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, slog.String("error", errs))
		}
		// Ties the request to the acting user once auth middleware has run.
		if userID, ok := c.Get("userID"); ok {
			attrs = append(attrs, slog.Any("user_id", userID))
		}

		switch {
		case status >= 500:
			logger.Log.Error("Incoming request", attrs...)
		case status >= 400:
			logger.Log.Warn("Incoming request", attrs...)
		default:
			logger.Log.Info("Incoming request", attrs...)
		}
	}
}
