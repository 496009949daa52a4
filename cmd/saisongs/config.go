// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
}

// ServerConfig holds the backend connection settings.
type ServerConfig struct {
	URL       string `toml:"url"`
	JWTSecret string `toml:"jwt_secret"`
	UserID    string `toml:"user_id"`
	DeviceID  string `toml:"device_id"`
}

// DatabaseConfig holds the local queue database settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// DefaultConfigPath returns ~/.config/saisongs/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "saisongs", "config.toml")
}

// LoadConfig reads and parses the TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Server.URL == "" {
		return nil, fmt.Errorf("config: server.url is required")
	}
	if config.Database.Path == "" {
		config.Database.Path = filepath.Join(filepath.Dir(path), "queue.db")
	}
	return &config, nil
}
