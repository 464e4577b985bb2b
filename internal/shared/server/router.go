package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/resumes"
	"resume-generator/internal/services/health"
	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/metrics"
	"resume-generator/internal/shared/server/middleware"
	"resume-generator/internal/shared/server/respond"
	"resume-generator/internal/users"
)

// RouterDeps carries handlers and guards for NewRouter.
type RouterDeps struct {
	Config        config.Config
	Verifier      middleware.TokenVerifier
	HealthHandler *health.Handler
	ResumeHandler *resumes.Handler
	UserHandler   *users.Handler

	// Now drives the rate limiter clock; nil means time.Now.
	Now func() time.Time
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.BodyLimit(cfg.MaxUploadBytes),
	)
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	r.NoRoute(func(c *gin.Context) {
		respond.NotFound(c, "Resource not found")
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(r, api)
	}

	authed := api.Group("", middleware.Auth(deps.Verifier))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.ResumeHandler != nil {
		var guards []gin.HandlerFunc
		if cfg.GenerateRatePerMinute > 0 {
			limiter := middleware.NewRateLimiter(deps.Now)
			guards = append(guards, middleware.RateLimit(middleware.PerMinute(cfg.GenerateRatePerMinute), limiter))
		}
		deps.ResumeHandler.RegisterRoutes(authed, guards...)
		deps.ResumeHandler.RegisterInternalRoutes(api.Group("/internal", middleware.InternalKey(cfg.InternalAPIKey)))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5008"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
