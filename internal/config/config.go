package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Base URL of the upstream business API
	APIBaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Database connection string (DSN) for browser session storage
	DatabaseURL string

	// Enable debug logging
	Debug bool

	// Per-request timeout for upstream API calls
	RequestTimeout time.Duration

	// How long a resolved identity may be served from cache
	PrincipalCacheTTL time.Duration

	// Session cookie configuration
	Cookie CookieConfig
}

// CookieConfig holds the session cookie attributes.
//
// The cookie carries an opaque session id; the bearer token itself never
// leaves the server. Secure should only be disabled for local development
// over plain HTTP.
type CookieConfig struct {
	// Name of the session cookie
	Name string

	// Secure marks the cookie as HTTPS-only
	Secure bool

	// MaxAge is the cookie lifetime. Zero means session-scoped.
	MaxAge time.Duration
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:5000/api"),
		ServerAddr:        getEnv("SERVER_ADDR", "localhost:8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "file:spaconsole.db"),
		Debug:             getEnvBool("DEBUG", false),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		PrincipalCacheTTL: getEnvDuration("PRINCIPAL_CACHE_TTL", 30*time.Second),
		Cookie: CookieConfig{
			Name:   getEnv("SESSION_COOKIE_NAME", "spaconsole_sid"),
			Secure: getEnvBool("SESSION_COOKIE_SECURE", true),
			MaxAge: getEnvDuration("SESSION_COOKIE_MAX_AGE", 0),
		},
	}

	// Validate required fields
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if cfg.PrincipalCacheTTL < 0 {
		return nil, fmt.Errorf("PRINCIPAL_CACHE_TTL must not be negative")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
