// Package daemon manages the Lingvo server lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	AI        AIConfig        `toml:"ai"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DatabaseConfig controls SQLite storage.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// AuthConfig controls sessions and the admin surface. Secrets here are
// normally supplied through the environment, not the config file.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTL      string `toml:"token_ttl"`
	AdminPassword string `toml:"admin_password"`
}

// AIConfig controls the Gemini tutor integration.
type AIConfig struct {
	Enabled bool     `toml:"enabled"`
	APIKey  string   `toml:"api_key"`
	Models  []string `toml:"models"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the defaults for a local development server.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Dir: lingvoHome(),
		},
		Auth: AuthConfig{
			TokenTTL: "168h",
		},
		AI: AIConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.lingvo/config.toml, falling back to
// defaults, then applies environment overrides. A .env file in the
// working directory is loaded first so local runs need no shell setup.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	path := filepath.Join(lingvoHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Secrets come from the environment when present.
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.lingvo/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(lingvoHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// lingvoHome returns the Lingvo data directory.
func lingvoHome() string {
	if env := os.Getenv("LINGVO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lingvo")
}

// LingvoHome is exported for use by other packages.
func LingvoHome() string {
	return lingvoHome()
}
