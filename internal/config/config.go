// Package config loads schemascript.yaml and the .env file next to it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/tordrt/schemascript/internal/dialect"
)

// DefaultFile is the config file looked up when none is named
const DefaultFile = "schemascript.yaml"

// Environment overrides, applied after the file and .env are read
const (
	EnvSourceURL = "SCHEMASCRIPT_SOURCE_URL"
	EnvDialect   = "SCHEMASCRIPT_DIALECT"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the file layout of schemascript.yaml
type Config struct {
	Source Source `yaml:"source"`
	Target Target `yaml:"target"`
	Data   Data   `yaml:"data"`
}

// Source says where schemas and rows are read from
type Source struct {
	// URL is a postgres://, mysql:// or sqlite:// database URL
	URL string `yaml:"url"`
	// Snapshot is a YAML schema file used instead of URL
	Snapshot string   `yaml:"snapshot"`
	Schema   string   `yaml:"schema"`
	Tables   []string `yaml:"tables"`
	Exclude  []string `yaml:"exclude"`
}

// Target describes the generated SQL
type Target struct {
	Dialect        string `yaml:"dialect"`
	IncludeSchema  bool   `yaml:"include_schema"`
	EscapeNames    *bool  `yaml:"escape_names"`
	BatchSeparator string `yaml:"batch_separator"`
}

// Data configures data scripts
type Data struct {
	IncludeIdentity *bool `yaml:"include_identity"`
	IncludeBlobs    bool  `yaml:"include_blobs"`
	MaxRows         int   `yaml:"max_rows"`
}

func boolPtr(b bool) *bool {
	return &b
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

func applyDefaults(c *Config) {
	if c.Target.EscapeNames == nil {
		c.Target.EscapeNames = boolPtr(true)
	}
	if c.Data.IncludeIdentity == nil {
		c.Data.IncludeIdentity = boolPtr(true)
	}
}

// Load reads the config file at path. A missing file yields the defaults.
// A .env file in the config's directory is loaded first; variables already
// set in the environment win. ${VAR} references in strings are expanded.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	var c Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&c)
	expandEnvVars(&c)
	applyOverrides(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &c, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func expandEnvVars(c *Config) {
	c.Source.URL = os.ExpandEnv(c.Source.URL)
	c.Source.Snapshot = os.ExpandEnv(c.Source.Snapshot)
	c.Source.Schema = os.ExpandEnv(c.Source.Schema)
	c.Target.Dialect = os.ExpandEnv(c.Target.Dialect)
}

func applyOverrides(c *Config) {
	if v := os.Getenv(EnvSourceURL); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv(EnvDialect); v != "" {
		c.Target.Dialect = v
	}
}

// Validate checks values the generators would reject later
func (c *Config) Validate() error {
	if c.Target.Dialect != "" {
		if _, err := dialect.Parse(c.Target.Dialect); err != nil {
			return fmt.Errorf("%w: target.dialect: %w", ErrInvalidConfig, err)
		}
	}
	if c.Data.MaxRows < 0 {
		return fmt.Errorf("%w: data.max_rows must not be negative", ErrInvalidConfig)
	}
	if c.Source.URL != "" && c.Source.Snapshot != "" {
		return fmt.Errorf("%w: source.url and source.snapshot are mutually exclusive", ErrInvalidConfig)
	}
	return nil
}

// TargetDialect returns the parsed target dialect, or "" when unset
func (c *Config) TargetDialect() dialect.Dialect {
	d, err := dialect.Parse(c.Target.Dialect)
	if err != nil {
		return ""
	}
	return d
}
