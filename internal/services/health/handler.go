package health

import (
	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches GET / to root and GET /health to api.
func (h *Handler) RegisterRoutes(root gin.IRoutes, api gin.IRoutes) {
	root.GET("/", func(c *gin.Context) {
		respond.OK(c, h.Svc.Root())
	})
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, h.Svc.Status(c.Request.Context()))
	})
}
