package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range GetEnvVars() {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("Expected log dir logs, got %s", cfg.LogDir)
	}
	if cfg.LogRetentionWeeks != 4 {
		t.Errorf("Expected 4 weeks retention, got %d", cfg.LogRetentionWeeks)
	}
	if cfg.MaxLogFileSize != 104857600 {
		t.Errorf("Expected 100MB log files, got %d", cfg.MaxLogFileSize)
	}
	if cfg.SessionIdle() != 120*time.Minute {
		t.Errorf("Expected 120m idle timeout, got %v", cfg.SessionIdle())
	}
	if cfg.SessionSweepMinutes != 10 {
		t.Errorf("Expected 10m sweep, got %d", cfg.SessionSweepMinutes)
	}
	if cfg.CatalogPath != "" {
		t.Errorf("Expected embedded catalog by default, got %s", cfg.CatalogPath)
	}
	if !cfg.IsDev() {
		t.Error("Expected dev environment by default")
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_IDLE_MINUTES", "30")
	t.Setenv("SESSION_SWEEP_MINUTES", "5")
	t.Setenv("CATALOG_PATH", "/etc/vetdose/catalog.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.IsDev() {
		t.Error("Expected prod environment")
	}
	if cfg.SessionIdle() != 30*time.Minute {
		t.Errorf("Expected 30m idle timeout, got %v", cfg.SessionIdle())
	}
	if cfg.CatalogPath != "/etc/vetdose/catalog.yaml" {
		t.Errorf("Expected catalog path, got %s", cfg.CatalogPath)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"privileged port", "PORT", "80", "invalid PORT"},
		{"non numeric port", "PORT", "http", "invalid PORT"},
		{"public address", "ADDRESS", "8.8.8.8", "invalid ADDRESS"},
		{"bad address", "ADDRESS", "not-an-ip", "invalid ADDRESS"},
		{"unknown env", "ENV", "qa", "invalid ENV"},
		{"unknown level", "LOG_LEVEL", "trace", "invalid LOG_LEVEL"},
		{"zero body", "MAX_REQUEST_BODY", "0", "invalid MAX_REQUEST_BODY"},
		{"huge header", "MAX_HEADER_SIZE", "209715200", "invalid MAX_HEADER_SIZE"},
		{"retention too long", "LOG_RETENTION_WEEKS", "53", "invalid LOG_RETENTION_WEEKS"},
		{"tiny log file", "MAX_LOG_FILE_SIZE", "1024", "invalid MAX_LOG_FILE_SIZE"},
		{"zero idle", "SESSION_IDLE_MINUTES", "0", "invalid SESSION_IDLE_MINUTES"},
		{"sweep above idle", "SESSION_SWEEP_MINUTES", "500", "invalid SESSION_SWEEP_MINUTES"},
		{"unparsable int", "LOG_RETENTION_WEEKS", "four", "failed to parse environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	for _, addr := range []string{"localhost", "127.0.0.1", "::1", "0.0.0.0", "10.0.0.5", "192.168.1.10"} {
		if err := validateAddress(addr); err != nil {
			t.Errorf("Expected %s to be accepted, got %v", addr, err)
		}
	}
}
