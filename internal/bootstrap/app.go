package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/extract"
	"resume-generator/internal/llm"
	"resume-generator/internal/llm/gemini"
	"resume-generator/internal/resumes"
	"resume-generator/internal/services/health"
	"resume-generator/internal/shared/auth"
	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/server"
	"resume-generator/internal/shared/storage/db"
	"resume-generator/internal/shared/storage/object"
	localstore "resume-generator/internal/shared/storage/object/local"
	s3store "resume-generator/internal/shared/storage/object/s3"
	"resume-generator/internal/shared/telemetry"
	"resume-generator/internal/structuring"
	"resume-generator/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Dialect       db.Dialect
	Store         object.ObjectStore
	Model         llm.Model
	UsersRepo     users.Repo
	ResumesRepo   resumes.Repo
	UsersService  *users.Service
	ResumeService *resumes.Service
	Verifier      *auth.Verifier
}

// Overrides replaces external collaborators, mainly for tests.
type Overrides struct {
	Model      llm.Model
	Rasterizer extract.Rasterizer
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, !cfg.IsDevLike())
	if err != nil {
		return nil, err
	}

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB, Dialect: dialect, Verifier: verifier}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	if app.Model, err = buildModel(ctx, cfg, ov.Model); err != nil {
		app.Close()
		return nil, err
	}

	rasterizer := ov.Rasterizer
	if rasterizer == nil {
		rasterizer = extract.FitzRasterizer{}
	}

	var tx resumes.TxRunner
	if sqlDB != nil {
		app.UsersRepo, app.ResumesRepo = resumes.NewSQLRepos(dialect, sqlDB)
		tx = resumes.SQLTxRunner{DB: sqlDB, Dialect: dialect}
	} else {
		userRepo, resumeRepo := users.NewMemoryRepo(), resumes.NewMemoryRepo()
		app.UsersRepo, app.ResumesRepo = userRepo, resumeRepo
		tx = resumes.MemoryTxRunner{Users: userRepo, Resumes: resumeRepo}
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumeService = &resumes.Service{
		Extractor:  extract.New(app.Model, rasterizer),
		Structurer: structuring.New(app.Model),
		Tx:         tx,
		Users:      app.UsersRepo,
		Resumes:    app.ResumesRepo,
		Access:     resumes.AccessForMode(cfg.PaymentMode, app.ResumesRepo),
		Archive:    app.Store,
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Verifier:      verifier,
		HealthHandler: health.NewHandler(health.NewService(pinger)),
		ResumeHandler: resumes.NewHandler(app.ResumeService),
		UserHandler:   users.NewHandler(app.UsersService),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     databaseKind(sqlDB, dialect),
		"object_store": cfg.ObjectStoreType,
		"payment_mode": cfg.PaymentMode,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a != nil && a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, "", nil
		}
		return nil, "", errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB, dialect); err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, "", nil
		}
		return nil, "", err
	}
	return sqlDB, dialect, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildModel(ctx context.Context, cfg config.Config, override llm.Model) (llm.Model, error) {
	if override != nil {
		return override, nil
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.model_placeholder", map[string]any{"reason": "GEMINI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	client, err := gemini.New(ctx, cfg.GeminiAPIKey, gemini.Options{Model: cfg.GeminiModel})
	if err != nil {
		return nil, fmt.Errorf("build gemini client: %w", err)
	}
	return client, nil
}

func databaseKind(sqlDB *sql.DB, dialect db.Dialect) string {
	if sqlDB == nil {
		return "memory"
	}
	return string(dialect)
}
