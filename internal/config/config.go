// Package config loads pairsort settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	apperrors "github.com/edkuperman/pairsort/internal/errors"
)

// Environment variables that override file settings.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvAddr        = "PAIRSORT_ADDR"
	EnvLogLevel    = "PAIRSORT_LOG_LEVEL"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig points at the optional Postgres edge source. An empty URL
// disables every database-backed feature.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// AuditConfig drives the periodic cycle audit of stored DAGs.
// Schedule uses the six-field cron syntax (with seconds).
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns <= 0 {
		c.Database.MinConns = 1
	}
	if c.Database.MaxConnLifetime <= 0 {
		c.Database.MaxConnLifetime = time.Hour
	}

	if c.Audit.Schedule == "" {
		c.Audit.Schedule = "0 */5 * * * *"
	}
}

// applyEnv overrides file settings from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "log.level %q", c.Log.Level)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if _, err := ScheduleParser.Parse(c.Audit.Schedule); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "audit.schedule %q", c.Audit.Schedule)
	}
	if c.Audit.Enabled && !c.HasDatabase() {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "audit.enabled requires database.url")
	}
	return nil
}

// HasDatabase reports whether a Postgres edge source is configured.
func (c *Config) HasDatabase() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}

// LogLevel returns the parsed log level. Call Validate first.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ScheduleParser accepts the cron syntax used by audit.schedule.
var ScheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Load reads path, applies defaults and environment overrides, and
// validates the result. A missing file yields the defaults; an empty path
// skips the file entirely.
func Load(path string) (*Config, error) {
	return load(path, os.ReadFile, os.Getenv)
}

func load(path string, readFile func(string) ([]byte, error), getenv func(string) string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := readFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		}
	}

	c.ApplyDefaults()
	c.applyEnv(getenv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
