// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing disabled if not set)

	// Scoring
	RecentWindowLimit int // Max history entries fetched per scoring call

	// Security
	AllowedOrigins []string
	RateLimitRPM   int
}

// Defaults
const (
	DefaultPort              = "8080"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultRecentWindowLimit = 50
	DefaultRateLimitRPM      = 120
)

// Load reads configuration from environment variables.
// It loads a .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		Env:               getEnv("ENV", DefaultEnv),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RecentWindowLimit: getEnvInt("RECENT_WINDOW_LIMIT", DefaultRecentWindowLimit),
		AllowedOrigins:    []string{getEnv("ALLOWED_ORIGIN", "*")},
		RateLimitRPM:      getEnvInt("RATE_LIMIT_RPM", DefaultRateLimitRPM),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.RecentWindowLimit <= 0 {
		return fmt.Errorf("RECENT_WINDOW_LIMIT must be positive, got %d", c.RecentWindowLimit)
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
