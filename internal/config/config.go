package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/autoaudit/estimator/internal/logger"
)

type Config struct {
	Port        string
	DatabaseURL string
	// CatalogPath overrides the built-in rule catalog when set
	CatalogPath string
	UnlockToken string
	Cache       CacheConfig

	// LogLevel and ErrorSampleRate are re-applied after .env is read,
	// since the logger package initialises from the bare environment
	LogLevel        logger.Level
	ErrorSampleRate int
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return &Config{
		Port:        normalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), "8080")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CatalogPath: strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		UnlockToken: strings.TrimSpace(os.Getenv("UNLOCK_TOKEN")),
		Cache: CacheConfig{
			Size: intEnv("REPORT_CACHE_SIZE", 1024),
			TTL:  durationEnv("REPORT_CACHE_TTL", 10*time.Minute),
		},
		LogLevel:        level,
		ErrorSampleRate: intEnv("ERROR_SAMPLE_RATE", 1),
	}, nil
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
