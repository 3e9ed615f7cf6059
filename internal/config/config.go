// Package config loads the league server configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Card catalog configuration
	Catalog CatalogConfig `toml:"catalog"`

	// Auth configuration
	Auth AuthConfig `toml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `toml:"port"`             // Listen port
	AllowedOrigins  []string `toml:"allowed_origins"`  // CORS origins
	ShutdownTimeout string   `toml:"shutdown_timeout"` // Graceful shutdown window (e.g., "10s")
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite database file
	AutoMigrate bool   `toml:"auto_migrate"` // Run pending migrations on startup
}

// CatalogConfig contains Scryfall client settings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"` // Override for the Scryfall API base URL
}

// AuthConfig contains token validation settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"` // Shared secret with the identity provider
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:*", "http://127.0.0.1:*"},
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Path:        "league.db",
			AutoMigrate: true,
		},
		Catalog: CatalogConfig{},
		Auth:    AuthConfig{},
	}
}

// Load loads the configuration from the given path. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}

	if _, err := c.ShutdownTimeout(); err != nil {
		return fmt.Errorf("invalid shutdown timeout %q: %w", c.Server.ShutdownTimeout, err)
	}

	return nil
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}
