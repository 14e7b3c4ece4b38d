// Package config loads service configuration from an optional YAML file,
// falling back to defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs at startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Browser  BrowserConfig  `yaml:"browser"`
	Cache    CacheConfig    `yaml:"cache"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig configures the headless-browser pool.
type BrowserConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// CacheConfig configures the in-memory result cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// ScrapeConfig bounds a single extraction request.
type ScrapeConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":3001"},
		Database: DatabaseConfig{Path: "newstrack.db"},
		Browser:  BrowserConfig{PoolSize: 4},
		Cache:    CacheConfig{TTL: 10 * time.Minute},
		Scrape:   ScrapeConfig{RequestTimeout: 3 * time.Minute},
	}
}

// Load reads ~/.newstrack/config.yaml when it exists and merges it over
// the defaults. A missing file is not an error.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return LoadFile(filepath.Join(homeDir, ".newstrack", "config.yaml"))
}

// LoadFile reads the given config file, merging it over the defaults. A
// missing file yields the defaults; a malformed file is an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = Default().Server.Addr
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = Default().Database.Path
	}
	if cfg.Browser.PoolSize <= 0 {
		cfg.Browser.PoolSize = Default().Browser.PoolSize
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = Default().Cache.TTL
	}
	if cfg.Scrape.RequestTimeout <= 0 {
		cfg.Scrape.RequestTimeout = Default().Scrape.RequestTimeout
	}

	return cfg, nil
}
