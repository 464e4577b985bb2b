package users

import (
	"errors"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/middleware"
	"resume-generator/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	email := middleware.UserEmailFromContext(c)
	user, err := h.Svc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "User not found")
			return
		}
		respond.Internal(c, "Internal server error: "+err.Error())
		return
	}
	respond.OK(c, gin.H{
		"success": true,
		"user":    user,
	})
}
