package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	JWTSecret          string
	TokenTTLHours      int
	RedisURL           string // optional; empty means in-memory token revocation
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	JobCategories      []string
	MaxJobPhotos       int
	SeedDemoData       bool
	StaleJobMaxAgeHrs  int
	StaleJobSweepMins  int
}

// DefaultJobCategories are the categories a job may be created under when
// JOB_CATEGORIES is not set.
var DefaultJobCategories = []string{
	"Emergency Breakdown",
	"General Repair",
	"Logbook Servicing",
	"Diagnostics",
	"Battery Replacement",
	"Pre-purchase Inspection",
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	tokenTTL, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	maxPhotos, err := strconv.Atoi(getEnv("MAX_JOB_PHOTOS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_JOB_PHOTOS: %w", err)
	}

	staleAge, err := strconv.Atoi(getEnv("STALE_JOB_MAX_AGE_HOURS", "168"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_JOB_MAX_AGE_HOURS: %w", err)
	}

	staleSweep, err := strconv.Atoi(getEnv("STALE_JOB_SWEEP_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_JOB_SWEEP_MINUTES: %w", err)
	}

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerPort:    port,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTLHours: tokenTTL,
		RedisURL:      getEnv("REDIS_URL", ""),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitPerMinute: rateLimit,
		JobCategories:      parseCSVEnv("JOB_CATEGORIES", DefaultJobCategories),
		MaxJobPhotos:       maxPhotos,
		SeedDemoData:       parseBoolEnv("SEED_DEMO_DATA", false),
		StaleJobMaxAgeHrs:  staleAge,
		StaleJobSweepMins:  staleSweep,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
