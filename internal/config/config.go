// Package config manages the catalogd configuration and data directory
// layout. It handles loading, saving, and initializing the service
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	ConfigFile   = "config.toml"
	ImagesDir    = "images"
	DocumentFile = "items.json"
	DatabaseFile = "catalog.db"
	DefaultImage = "default.jpg"
)

// Supported repository backends.
const (
	BackendDocument = "document"
	BackendSQLite   = "sqlite"
)

// Config represents the catalogd configuration.
type Config struct {
	Listen        string `toml:"listen"`
	Backend       string `toml:"backend"`
	FrontURL      string `toml:"front_url"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	MaxUploadSize int64  `toml:"max_upload_size"` // bytes

	path string // path to the data directory
}

// Default returns a configuration with default values for the given
// data directory.
func Default(dataDir string) *Config {
	return &Config{
		Listen:        "0.0.0.0:9000",
		Backend:       BackendDocument,
		FrontURL:      "http://localhost:3000",
		LogLevel:      "info",
		LogFormat:     "text",
		MaxUploadSize: 16 * 1024 * 1024, // 16MB
		path:          dataDir,
	}
}

// Load loads the configuration from the given data directory and
// applies CATALOGD_* environment overrides.
func Load(dataDir string) (*Config, error) {
	configPath := filepath.Join(dataDir, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default(dataDir)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.path = dataDir
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0644)
}

// DataPath returns the path to the data directory.
func (c *Config) DataPath() string {
	return c.path
}

// ImagesPath returns the path to the image blob directory.
func (c *Config) ImagesPath() string {
	return filepath.Join(c.path, ImagesDir)
}

// DocumentPath returns the path to the JSON document backend file.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.path, DocumentFile)
}

// DatabasePath returns the path to the sqlite backend database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// Initialize creates a new data directory with initial configuration
// and the image directory. Fails if the directory is already
// initialized.
func Initialize(dataDir, backend string) (*Config, error) {
	configPath := filepath.Join(dataDir, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("data directory already initialized: %s", dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, ImagesDir), 0755); err != nil {
		return nil, fmt.Errorf("create images directory: %w", err)
	}

	cfg := Default(dataDir)
	if backend != "" {
		cfg.Backend = backend
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with CATALOGD_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CATALOGD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CATALOGD_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("CATALOGD_FRONT_URL"); v != "" {
		c.FrontURL = v
	}
	if v := os.Getenv("CATALOGD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CATALOGD_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendDocument, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendDocument, BackendSQLite)
	}
}
