package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port string `validate:"required"`

	// Optional bearer token for the local API. Empty disables auth.
	APIKey string

	// Gemini chat
	GeminiAPIKey string
	GeminiModel  string `validate:"required"`

	// Local state
	DataDir string `validate:"required"`

	// Upload limits
	MaxUploadBytes int64 `validate:"min=1"`

	// Sessions
	SessionTTL           time.Duration `validate:"required"`
	MaxConcurrentExtract int           `validate:"min=1,max=64"`

	// Credential vault
	PBKDF2Iterations int `validate:"min=100000"`

	// Reading history
	HistoryLimit int `validate:"min=1,max=50"`
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PDFCHAT_API_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		DataDir: envOr("DATA_DIR", defaultDataDir()),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB

		SessionTTL:           envDuration("SESSION_TTL", 2*time.Hour),
		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 5),

		PBKDF2Iterations: envInt("PBKDF2_ITERATIONS", 100000),

		HistoryLimit: envInt("HISTORY_LIMIT", 7),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 5
	}
	if cfg.PBKDF2Iterations < 100000 {
		cfg.PBKDF2Iterations = 100000
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 7
	}

	return cfg
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/pdfchat"
	}
	return "pdfchat-data"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
