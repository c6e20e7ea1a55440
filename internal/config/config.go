package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the driver settings read from the environment.
type Config struct {
	Store        string `env:"USERDIR_STORE" envDefault:"memory"`
	DatabasePath string `env:"USERDIR_DATABASE_PATH" envDefault:":memory:"`
	LogLevel     string `env:"USERDIR_LOG_LEVEL" envDefault:"info"`
}

// Load parses and validates the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports unsupported store or log level values.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("USERDIR_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level converts LogLevel to a slog.Level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("USERDIR_LOG_LEVEL: %w", err)
	}
	return level, nil
}
