package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/respond"
)

// TooLargeMessage is the error text for uploads over the size limit.
const TooLargeMessage = "File too large. Maximum size is 16MB"

// BodyLimit rejects requests whose body exceeds max bytes.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > max {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", TooLargeMessage, nil)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
