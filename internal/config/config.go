// Package config loads runtime configuration from the environment and
// an optional YAML file. Environment values override file values.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DockConfig selects and parameterizes the dock backend.
type DockConfig struct {
	// Backend is one of "memory", "file" (buntdb) or "postgres" (bun).
	Backend string `yaml:"backend"`
	// Path is the file path for the file backend.
	Path string `yaml:"path"`
	// DSN is the connection string for the postgres backend.
	DSN string `yaml:"dsn"`
}

// Config holds runtime configuration.
type Config struct {
	LogLevel string     `yaml:"log_level"`
	Tick     float64    `yaml:"tick"`
	Limit    float64    `yaml:"limit"`
	Real     bool       `yaml:"real"`
	Dock     DockConfig `yaml:"dock"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Tick:     1.0,
		Dock:     DockConfig{Backend: "memory"},
	}
}

// Load builds configuration from defaults, the optional YAML file at
// path, then BOXFLOW_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	}
	cfg.LogLevel = getEnv("BOXFLOW_LOG_LEVEL", cfg.LogLevel)
	cfg.Tick = getEnvFloat("BOXFLOW_TICK", cfg.Tick)
	cfg.Limit = getEnvFloat("BOXFLOW_LIMIT", cfg.Limit)
	cfg.Real = getEnvBool("BOXFLOW_REAL", cfg.Real)
	cfg.Dock.Backend = getEnv("BOXFLOW_DOCK_BACKEND", cfg.Dock.Backend)
	cfg.Dock.Path = getEnv("BOXFLOW_DOCK_PATH", cfg.Dock.Path)
	cfg.Dock.DSN = getEnv("BOXFLOW_DOCK_DSN", cfg.Dock.DSN)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
