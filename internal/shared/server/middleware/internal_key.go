package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/respond"
)

// InternalKey guards service-to-service routes with a shared X-Internal-Key.
// An empty key disables the routes entirely.
func InternalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			respond.NotFound(c, "Resource not found")
			return
		}
		got := c.GetHeader("X-Internal-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid internal key", nil)
			return
		}
		c.Next()
	}
}
