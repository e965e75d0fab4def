package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger returns a gin.HandlerFunc (middleware) that logs requests using zap.
// It logs the method, path, matched route, status code, latency, client IP,
// query parameters and any errors attached to the gin context.
// The level follows the status class: 5xx error, 4xx warn, everything else info.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RequestLogger requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		start := time.Now() // Record start time of the request

		// Copy the path and query before later handlers get a chance to rewrite them.
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request by calling the next handler in the chain.
		// Status code and latency are only known after this returns.
		c.Next()

		// Prepare log fields for structured logging.
		statusCode := c.Writer.Status()
		logFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status_code", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		// Add the route pattern when it differs from the raw path, e.g. /lessons/:id.
		if route := c.FullPath(); route != "" && route != path {
			logFields = append(logFields, zap.String("route", route))
		}

		// Add query parameters if they exist.
		if query != "" {
			logFields = append(logFields, zap.String("query", query))
		}

		// Add errors if any were attached to Gin's context.
		if len(c.Errors) > 0 {
			logFields = append(logFields, zap.String("gin_errors", c.Errors.String()))
		}

		// Log with different levels based on status code.
		switch {
		case statusCode >= http.StatusInternalServerError: // 500 and above
			logger.Error("Incoming Request", logFields...)
		case statusCode >= http.StatusBadRequest: // 400 to 499
			logger.Warn("Incoming Request", logFields...)
		default: // 1xx, 2xx, 3xx
			logger.Info("Incoming Request", logFields...)
		}
	}
}
