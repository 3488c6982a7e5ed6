package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	SessionSecret string
	ListenAddr    string
	SessionTTL    time.Duration
	CookieSecure  bool
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "336h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	secure, err := strconv.ParseBool(getEnvOrDefault("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	return &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":8080"),
		SessionTTL:    ttl,
		CookieSecure:  secure,
	}, nil
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
