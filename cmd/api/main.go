package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/bootstrap"
	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/server"
	"resume-generator/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.SetLogger(telemetry.New(cfg.LogLevel))

	err := run(cfg)
	telemetry.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM. Startup failures are logged and returned.
func run(cfg config.Config) error {
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Overrides{})
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("server.starting", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server.error", map[string]any{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
	telemetry.Info("server.stopped", nil)
	return nil
}
