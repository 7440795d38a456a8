package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server. BindAddr defaults to loopback: the console acts with the stored session.
	BindAddr string
	Port     int
	LogLevel string

	// Backend API root, e.g. http://localhost:8080/api
	APIBaseURL string

	// HTTP client. Zero means no client-side timeout.
	HTTPTimeout time.Duration

	// Resilience
	MaxConcurrency int

	// Local store directory. Empty keeps the session in memory only.
	SessionDir string

	// Notification poller
	NotificationInterval time.Duration

	// View API. Empty origins keep it same-origin; a non-positive limit disables throttling.
	AllowedOrigins         []string
	LoginAttemptsPerMinute int

	// Observability. Empty disables trace export.
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		BindAddr: getEnv("BIND_ADDR", "127.0.0.1"),
		Port:     getEnvInt("PORT", 8088),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 0),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		SessionDir: getEnv("SESSION_DIR", ""),

		NotificationInterval: getEnvDuration("NOTIFICATION_INTERVAL", 30*time.Second),

		AllowedOrigins:         getEnvList("CORS_ALLOWED_ORIGINS"),
		LoginAttemptsPerMinute: getEnvInt("LOGIN_ATTEMPTS_PER_MINUTE", 10),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
