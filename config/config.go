// Package config loads moneymanager settings. Values come from, in rising
// priority: built-in defaults, a YAML file, MONEYMANAGER_* environment
// variables (a .env file in the working directory is read first), and
// finally command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/exporter"
)

// DefaultFile is read when no config file is given and it exists.
const DefaultFile = "moneymanager.yaml"

// Environment variables that override file values.
const (
	EnvExportPath    = "MONEYMANAGER_EXPORT_PATH"
	EnvBudgetLimit   = "MONEYMANAGER_BUDGET_LIMIT"
	EnvLogLevel      = "MONEYMANAGER_LOG_LEVEL"
	EnvWatchDebounce = "MONEYMANAGER_WATCH_DEBOUNCE"
)

// Config holds the application settings.
type Config struct {
	// ExportPath is where a session is saved.
	ExportPath string `yaml:"export_path"`

	// BudgetLimit is the spending limit applied when a session starts.
	// Empty means no limit is set.
	BudgetLimit string `yaml:"budget_limit"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// WatchDebounce is how long a watched file must be quiet before it is
	// reloaded.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ExportPath:    exporter.DefaultPath,
		LogLevel:      "warn",
		WatchDebounce: 100 * time.Millisecond,
	}
}

// LoadEnv reads a .env file into the process environment. A missing
// default .env is not an error; an explicitly named one is.
func LoadEnv(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads settings from path, then applies environment overrides. When
// path is empty, DefaultFile is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML values on cfg. Unknown keys are rejected so typos
// do not go unnoticed.
func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvExportPath); ok {
		c.ExportPath = v
	}
	if v, ok := os.LookupEnv(EnvBudgetLimit); ok {
		c.BudgetLimit = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvWatchDebounce); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWatchDebounce, err)
		}
		c.WatchDebounce = d
	}
	return nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.ExportPath == "" {
		return fmt.Errorf("export_path must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("watch_debounce must be positive, got %s", c.WatchDebounce)
	}
	if _, _, err := c.Limit(); err != nil {
		return err
	}
	return nil
}

// Limit returns the configured budget limit and whether one is set.
func (c *Config) Limit() (decimal.Decimal, bool, error) {
	if c.BudgetLimit == "" {
		return decimal.Zero, false, nil
	}
	d, err := budget.ParseAmount(c.BudgetLimit)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid budget_limit: %w", err)
	}
	return d, true, nil
}
