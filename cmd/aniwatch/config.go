package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Browse  BrowseConfig  `toml:"browse"`
	// SessionPath overrides where the session file lives.
	SessionPath string `toml:"session_path"`
}

// ServerConfig points at the aniwatch backend.
type ServerConfig struct {
	URL string `toml:"url"`
}

// CatalogConfig points at the external anime catalog.
type CatalogConfig struct {
	URL string `toml:"url"`
}

// BrowseConfig bounds catalog browsing.
type BrowseConfig struct {
	MaxPages int `toml:"max_pages"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8080",
		},
	}
}

// loadConfig reads and parses a TOML configuration file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := defaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}
