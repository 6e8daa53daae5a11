// Package config loads tracker settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to upper-cased keys for environment lookup,
// so "log_level" is read from TRACKER_LOG_LEVEL.
const EnvPrefix = "TRACKER_"

const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

type Config struct {
	// File is the backing file of the csv, sqlite and json backends.
	File        string `yaml:"file"`
	Backend     string `yaml:"backend"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
	Addr        string `yaml:"addr"`
	LogLevel    string `yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`
	// SlotGrid checks conflicts on 15 minute slots instead of exact intervals.
	SlotGrid bool `yaml:"slot_grid"`
}

func Default() Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return Config{
		File:      filepath.Join(dir, "tracker", "tasks.csv"),
		Backend:   BackendCSV,
		Addr:      "localhost:8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Path is the default location of the config file.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "tracker", "config.yaml")
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"file":         &c.File,
		"backend":      &c.Backend,
		"postgres_url": &c.PostgresURL,
		"addr":         &c.Addr,
		"log_level":    &c.LogLevel,
		"log_format":   &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + strings.ToUpper(key)); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "SLOT_GRID"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSLOT_GRID: %w", EnvPrefix, err)
		}
		c.SlotGrid = b
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendCSV, BackendSQLite, BackendJSON:
		if c.File == "" {
			return fmt.Errorf("backend %s needs a file", c.Backend)
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("backend postgres needs postgres_url")
		}
	default:
		return fmt.Errorf("unknown backend %q, want csv, sqlite, json or postgres", c.Backend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q, want text or json", c.LogFormat)
	}
	return nil
}

// Save writes c to path, creating its directory.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
