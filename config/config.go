// Package config loads the service configuration from the environment
package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port              string `env:"PORT" envDefault:"8000"`
	Address           string `env:"ADDRESS" envDefault:"127.0.0.1"`
	Env               string `env:"ENV" envDefault:"dev"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	LogDir            string `env:"LOG_DIR" envDefault:"logs"`
	LogRetentionWeeks int    `env:"LOG_RETENTION_WEEKS" envDefault:"4"`
	MaxLogFileSize    int64  `env:"MAX_LOG_FILE_SIZE" envDefault:"104857600"` // bytes
	MaxRequestBody    int64  `env:"MAX_REQUEST_BODY" envDefault:"1048576"`    // bytes
	MaxHeaderSize     int64  `env:"MAX_HEADER_SIZE" envDefault:"1048576"`     // bytes

	SessionIdleMinutes  int    `env:"SESSION_IDLE_MINUTES" envDefault:"120"`
	SessionSweepMinutes int    `env:"SESSION_SWEEP_MINUTES" envDefault:"10"`
	CatalogPath         string `env:"CATALOG_PATH"` // empty serves the embedded seed
}

// Load parses and validates configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SessionIdle returns how long an untouched session is kept
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// IsDev reports whether the service runs in the dev environment
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateOneOf(cfg.Env, []string{"dev", "staging", "prod", "test"}); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateOneOf(cfg.LogLevel, []string{"debug", "info", "warn", "error"}); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateBetween(cfg.LogRetentionWeeks, 1, 52); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	// One week at most
	if err := validateBetween(cfg.SessionIdleMinutes, 1, 7*24*60); err != nil {
		return fmt.Errorf("invalid SESSION_IDLE_MINUTES: %w", err)
	}

	if err := validateBetween(cfg.SessionSweepMinutes, 1, cfg.SessionIdleMinutes); err != nil {
		return fmt.Errorf("invalid SESSION_SWEEP_MINUTES: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress accepts loopback and private addresses only
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateOneOf checks value against an allow-list, case-insensitively
func validateOneOf(value string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("value cannot be empty")
	}

	if !slices.Contains(allowed, strings.ToLower(value)) {
		return fmt.Errorf("must be one of: %v, got: %s", allowed, value)
	}

	return nil
}

// validateBetween checks that n lies in [lo, hi]
func validateBetween(n, lo, hi int) error {
	if n < lo {
		return fmt.Errorf("must be at least %d, got: %d", lo, n)
	}
	if n > hi {
		return fmt.Errorf("must be at most %d, got: %d", hi, n)
	}
	return nil
}

// validateSizeLimit validates request size limits
func validateSizeLimit(size int64) error {
	if size <= 0 {
		return fmt.Errorf("must be positive, got: %d", size)
	}

	if size > 100*1024*1024 {
		return fmt.Errorf("is too large (max 100MB), got: %d bytes", size)
	}

	return nil
}

// validateMaxLogFileSize keeps log parts between 1MB and 1GB
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// GetEnvVars returns the environment variables the service reads
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"SESSION_IDLE_MINUTES",
		"SESSION_SWEEP_MINUTES",
		"CATALOG_PATH",
	}
}
