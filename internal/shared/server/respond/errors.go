package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/telemetry"
)

// ErrorResponse is the error body. Error carries the human-readable message.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if email := c.GetString("userEmail"); email != "" {
		fields["user_email"] = email
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// BadRequest is shorthand for a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "bad_request", message, nil)
}

// NotFound is shorthand for a 404 error.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "not_found", message, nil)
}

// Internal is shorthand for a 500 error.
func Internal(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "internal", message, nil)
}
