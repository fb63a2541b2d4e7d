// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

store:
  backend: "sqlite"
  sqlite:
    path: "./test.db"

lifecycle:
  booking_ttl: "2h"
  reservation_ttl: "90m"
  profile_ttl: "30m"

auth:
  jwt_secret: "test-secret"
  require_auth: true

mastercard:
  enabled: true
  consumer_key: "ck-test"
  private_key_path: "./signing.pem"
  api_url: "https://sandbox.api.mastercard.com"

dsapi:
  enabled: true
  base_url: "https://api.deskline.net"
  username: "ds-user"
  password: "ds-pass"
  region: "tirol"
  db_code: "TIR"
  theme_limit: 50

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify server config
	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}

	// Verify store config
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "sqlite")
	}
	if cfg.Store.SQLite.Path != "./test.db" {
		t.Errorf("Store.SQLite.Path = %q, want %q", cfg.Store.SQLite.Path, "./test.db")
	}

	// Verify lifecycle config with duration parsing
	if cfg.Lifecycle.BookingTTL != 2*time.Hour {
		t.Errorf("Lifecycle.BookingTTL = %v, want %v", cfg.Lifecycle.BookingTTL, 2*time.Hour)
	}
	if cfg.Lifecycle.ReservationTTL != 90*time.Minute {
		t.Errorf("Lifecycle.ReservationTTL = %v, want %v", cfg.Lifecycle.ReservationTTL, 90*time.Minute)
	}
	if cfg.Lifecycle.ProfileTTL != 30*time.Minute {
		t.Errorf("Lifecycle.ProfileTTL = %v, want %v", cfg.Lifecycle.ProfileTTL, 30*time.Minute)
	}

	// Verify auth config
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if !cfg.Auth.RequireAuth {
		t.Error("Auth.RequireAuth = false, want true")
	}

	// Verify mastercard config
	if !cfg.Mastercard.Enabled {
		t.Error("Mastercard.Enabled = false, want true")
	}
	if cfg.Mastercard.ConsumerKey != "ck-test" {
		t.Errorf("Mastercard.ConsumerKey = %q, want %q", cfg.Mastercard.ConsumerKey, "ck-test")
	}

	// Verify dsapi config
	if !cfg.DSAPI.Enabled {
		t.Error("DSAPI.Enabled = false, want true")
	}
	if cfg.DSAPI.Region != "tirol" {
		t.Errorf("DSAPI.Region = %q, want %q", cfg.DSAPI.Region, "tirol")
	}
	if cfg.DSAPI.DBCode != "TIR" {
		t.Errorf("DSAPI.DBCode = %q, want %q", cfg.DSAPI.DBCode, "TIR")
	}
	if cfg.DSAPI.ThemeLimit != 50 {
		t.Errorf("DSAPI.ThemeLimit = %d, want 50", cfg.DSAPI.ThemeLimit)
	}

	// Verify logging config
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TOUR_TEST_SECRET", "expanded-secret")
	t.Setenv("TOUR_TEST_REDIS", "localhost:6379")

	configPath := writeConfig(t, `
server:
  http_addr: ":8080"

store:
  backend: "redis"
  redis:
    addr: "${TOUR_TEST_REDIS}"

auth:
  jwt_secret: "${TOUR_TEST_SECRET}"
  require_auth: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "expanded-secret")
	}
	if cfg.Store.Redis.Addr != "localhost:6379" {
		t.Errorf("Store.Redis.Addr = %q, want %q", cfg.Store.Redis.Addr, "localhost:6379")
	}
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"

logging:
  level: "${TOUR_TEST_UNSET_LEVEL}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "" {
		t.Errorf("Logging.Level = %q, want empty", cfg.Logging.Level)
	}
}

func TestLoad_DefaultsToMemoryBackend(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "" {
		t.Errorf("Store.Backend = %q, want empty (memory)", cfg.Store.Backend)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"

lifecycle:
  booking_ttl: "two hours"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "booking_ttl") {
		t.Errorf("error %q should mention booking_ttl", err.Error())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "etcd" },
			wantErr: "store.backend",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Store.Backend = "sqlite" },
			wantErr: "store.sqlite.path",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: "store.redis.addr",
		},
		{
			name: "require auth without secret",
			mutate: func(c *Config) {
				c.Auth.RequireAuth = true
				c.Auth.JWTSecret = ""
			},
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "mastercard enabled without consumer key",
			mutate:  func(c *Config) { c.Mastercard.Enabled = true },
			wantErr: "mastercard.consumer_key",
		},
		{
			name: "dsapi enabled without credentials",
			mutate: func(c *Config) {
				c.DSAPI.Enabled = true
				c.DSAPI.BaseURL = "https://api.deskline.net"
			},
			wantErr: "dsapi.username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{HTTPAddr: ":8080"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_MinimalConfigOK(t *testing.T) {
	cfg := &Config{Server: ServerConfig{HTTPAddr: ":8080"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
