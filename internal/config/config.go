// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultMaxUploadSize caps uploaded cover images at 16 MB.
const DefaultMaxUploadSize = 16 << 20

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible session store and page cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// SecretKey signs the long-lived welcome cookie.
	SecretKey string

	// Uploads
	UploadDir     string
	MaxUploadSize int64
	AllowedExt    []string

	// Seed admin credentials, used only when the admin_account table is empty.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "quillpress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "quillpress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SecretKey: envOrDefault("SECRET_KEY", "dev-secret-key"),

		UploadDir:     envOrDefault("UPLOAD_DIR", "static/uploads"),
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize),
		AllowedExt:    splitExt(envOrDefault("ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif,webp")),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin123"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SecretKey == "dev-secret-key" {
			return nil, fmt.Errorf("SECRET_KEY must be set in production")
		}
		if cfg.AdminPassword == "admin123" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ExtAllowed reports whether the filename carries one of the configured
// image extensions. The comparison is case-insensitive.
func (c *Config) ExtAllowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range c.AllowedExt {
		if ext == allowed {
			return true
		}
	}
	return false
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt64 reads an integer environment variable with a fallback.
func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// splitExt parses a comma-separated extension list, lowercased and trimmed.
func splitExt(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	return out
}
