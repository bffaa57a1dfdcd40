package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	ServerHost string
	ServerPort string

	Environment string

	JWTSecret      string
	AccessTokenTTL time.Duration

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	LogLevel  string
	LogFormat string

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// DashboardCacheTTL bounds staleness of fleet counts.
	DashboardCacheTTL time.Duration

	// WorkOrderBaseURL points at the external work-order system. Empty
	// disables resolution; timeline entries show raw references.
	WorkOrderBaseURL string
	WorkOrderTimeout time.Duration

	MetricsEnabled bool
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
	ErrInvalidDuration    = errors.New("invalid duration format")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		ServerHost: getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),

		Environment: getEnvOrDefault("ENV", "development"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RateLimitEnabled:  getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvOrDefaultInt("RATE_LIMIT_REQUESTS", 120),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		WorkOrderBaseURL: os.Getenv("WORK_ORDER_BASE_URL"),

		MetricsEnabled: getEnvOrDefaultBool("METRICS_ENABLED", true),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	var err error
	if cfg.AccessTokenTTL, err = parseSeconds(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "900")); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = parseSeconds(getEnvOrDefault("RATE_LIMIT_WINDOW", "60")); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = parseSeconds(getEnvOrDefault("DASHBOARD_CACHE_TTL", "30")); err != nil {
		return nil, err
	}
	if cfg.WorkOrderTimeout, err = parseSeconds(getEnvOrDefault("WORK_ORDER_TIMEOUT", "5")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseSeconds reads a whole number of seconds.
func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, ErrInvalidDuration
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseAllowedOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
