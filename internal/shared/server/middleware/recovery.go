package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/respond"
	"resume-generator/internal/shared/telemetry"
)

// Recovery recovers from panics and returns a standardized error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Internal(c, "Internal server error")
			}
		}()
		c.Next()
	}
}
