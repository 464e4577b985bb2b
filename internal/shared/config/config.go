package config

import (
	"os"
	"strconv"
	"strings"

	"resume-generator/internal/shared/telemetry"
)

const defaultMaxUploadBytes int64 = 16 << 20

// Config holds application configuration.
type Config struct {
	Port                  string
	Env                   string
	LogLevel              string
	DatabaseURL           string
	AllowedOrigins        []string
	MaxUploadBytes        int64
	GeminiAPIKey          string
	GeminiModel           string
	JWTSecret             string
	PaymentMode           string
	InternalAPIKey        string
	ObjectStoreType       string
	LocalStoreDir         string
	AWSRegion             string
	S3Bucket              string
	S3Prefix              string
	SSEKMSKeyID           string
	GenerateRatePerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:                  getEnv("PORT", "5008"),
		Env:                   env,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		DatabaseURL:           dbURL,
		AllowedOrigins:        splitAndTrim(getEnv("ALLOWED_ORIGINS", "")),
		MaxUploadBytes:        getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		JWTSecret:             getEnv("JWT_SECRET_KEY", ""),
		PaymentMode:           normalizePaymentMode(getEnv("PAYMENT_MODE", "client")),
		InternalAPIKey:        getEnv("INTERNAL_API_KEY", ""),
		ObjectStoreType:       normalizeStoreType(getEnv("OBJECT_STORE", "none")),
		LocalStoreDir:         getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:             getEnv("AWS_REGION", ""),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		S3Prefix:              getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:           getEnv("SSE_KMS_KEY_ID", ""),
		GenerateRatePerMinute: getEnvInt("GENERATE_RATE_PER_MINUTE", 10),
	}
}

// IsDevLike reports whether the environment allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}

func normalizePaymentMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ledger":
		return "ledger"
	default:
		return "client"
	}
}
