package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics in handlers, logs them with a stack
// trace and answers 500 if nothing was written yet.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		// The deferred function runs after c.Next() returns or unwinds.
		defer func() {
			if err := recover(); err != nil {
				// Log panic error with stack trace.
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				// If the response hasn't been written yet, send a generic 500 error.
				// This check prevents "multiple response.WriteHeader calls" errors.
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "Internal Server Error",
						"details": "The server encountered an unexpected condition which prevented it from fulfilling the request.",
					})
				}

				// Abort the request so no further handlers in the chain run.
				c.Abort()
			}
		}()

		// Process request.
		c.Next()
	}
}
