// ABOUTME: Configuration loading and parsing for tour-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete tour-gateway configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Auth       AuthConfig       `yaml:"auth"`
	Mastercard MastercardConfig `yaml:"mastercard"`
	DSAPI      DSAPIConfig      `yaml:"dsapi"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StoreConfig selects and configures the TTL store backend
type StoreConfig struct {
	Backend string       `yaml:"backend"` // memory, sqlite, or redis
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
}

// SQLiteConfig holds SQLite store configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds Redis store configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LifecycleConfig holds TTLs for bookings, reservations, and user profiles
type LifecycleConfig struct {
	BookingTTL     time.Duration `yaml:"-"`
	ReservationTTL time.Duration `yaml:"-"`
	ProfileTTL     time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	BookingTTLRaw     string `yaml:"booking_ttl"`
	ReservationTTLRaw string `yaml:"reservation_ttl"`
	ProfileTTLRaw     string `yaml:"profile_ttl"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	RequireAuth bool   `yaml:"require_auth"`
}

// MastercardConfig holds configuration for the signed ATM locations API
type MastercardConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ConsumerKey    string `yaml:"consumer_key"`
	PrivateKeyPath string `yaml:"private_key_path"` // PEM-encoded RSA key
	APIURL         string `yaml:"api_url"`
}

// DSAPIConfig holds configuration for the experiences provider API
type DSAPIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Region     string `yaml:"region"`
	DBCode     string `yaml:"db_code"`
	ThemeLimit int    `yaml:"theme_limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Store.Backend {
	case "", "memory":
		// In-memory store needs nothing else
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory, sqlite, or redis, got %q", c.Store.Backend)
	}

	if c.Auth.RequireAuth && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.require_auth is set")
	}

	if c.Mastercard.Enabled {
		if c.Mastercard.ConsumerKey == "" {
			return fmt.Errorf("mastercard.consumer_key is required when mastercard is enabled")
		}
		if c.Mastercard.PrivateKeyPath == "" {
			return fmt.Errorf("mastercard.private_key_path is required when mastercard is enabled")
		}
		if c.Mastercard.APIURL == "" {
			return fmt.Errorf("mastercard.api_url is required when mastercard is enabled")
		}
	}

	if c.DSAPI.Enabled {
		if c.DSAPI.BaseURL == "" {
			return fmt.Errorf("dsapi.base_url is required when dsapi is enabled")
		}
		if c.DSAPI.Username == "" || c.DSAPI.Password == "" {
			return fmt.Errorf("dsapi.username and dsapi.password are required when dsapi is enabled")
		}
		if c.DSAPI.Region == "" {
			return fmt.Errorf("dsapi.region is required when dsapi is enabled")
		}
		if c.DSAPI.DBCode == "" {
			return fmt.Errorf("dsapi.db_code is required when dsapi is enabled")
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Lifecycle.BookingTTLRaw != "" {
		cfg.Lifecycle.BookingTTL, err = time.ParseDuration(cfg.Lifecycle.BookingTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing booking_ttl %q: %w", cfg.Lifecycle.BookingTTLRaw, err)
		}
	}

	if cfg.Lifecycle.ReservationTTLRaw != "" {
		cfg.Lifecycle.ReservationTTL, err = time.ParseDuration(cfg.Lifecycle.ReservationTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing reservation_ttl %q: %w", cfg.Lifecycle.ReservationTTLRaw, err)
		}
	}

	if cfg.Lifecycle.ProfileTTLRaw != "" {
		cfg.Lifecycle.ProfileTTL, err = time.ParseDuration(cfg.Lifecycle.ProfileTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing profile_ttl %q: %w", cfg.Lifecycle.ProfileTTLRaw, err)
		}
	}

	return nil
}
