package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/auth"
	"resume-generator/internal/shared/server/respond"
)

const (
	userEmailKey = "userEmail"
	userNameKey  = "userName"
)

// TokenVerifier turns a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Auth requires a valid bearer token and stores the caller identity in context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		id, err := verifier.Verify(token)
		switch {
		case errors.Is(err, auth.ErrMissingEmail):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Email not found in token", nil)
			return
		case err != nil:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			return
		}

		c.Set(userEmailKey, id.Email)
		if id.Name != "" {
			c.Set(userNameKey, id.Name)
		}
		c.Next()
	}
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(c *gin.Context) auth.Identity {
	return auth.Identity{
		Email: UserEmailFromContext(c),
		Name:  UserNameFromContext(c),
	}
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userNameKey)
}
