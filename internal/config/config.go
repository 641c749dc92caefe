/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	// DataDir is where local state lives (telemetry database)
	DataDir string `yaml:"data_dir"`

	// ConnectionsFile is the saved-connections YAML file
	ConnectionsFile string `yaml:"connections_file"`

	// SecretFile holds the AES key sealing connection passwords
	SecretFile string `yaml:"secret_file"`

	// Telemetry configuration
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TelemetryConfig holds telemetry sink settings
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"` // Whether tool calls are recorded locally (default: false)
}

// CLIFlags are command-line overrides applied on top of the file
type CLIFlags struct {
	DataDir         string
	ConnectionsFile string
	SecretFile      string
}

// DefaultDataDir returns the default local state directory
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".schema-designer-mcp"
	}
	return filepath.Join(home, ".schema-designer-mcp")
}

// LoadConfig reads the YAML configuration file at path (optional), applies
// defaults, then applies CLI flag overrides. An empty path yields a pure
// defaults+flags configuration.
func LoadConfig(path string, flags CLIFlags) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if flags.ConnectionsFile != "" {
		cfg.ConnectionsFile = flags.ConnectionsFile
	}
	if flags.SecretFile != "" {
		cfg.SecretFile = flags.SecretFile
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.ConnectionsFile == "" {
		cfg.ConnectionsFile = filepath.Join(cfg.DataDir, "connections.yaml")
	}
	if cfg.SecretFile == "" {
		cfg.SecretFile = filepath.Join(cfg.DataDir, "secret.key")
	}
}

func validateConfig(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if cfg.ConnectionsFile == "" {
		return fmt.Errorf("connections_file cannot be empty")
	}
	return nil
}
