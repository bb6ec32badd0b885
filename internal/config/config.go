// Package config provides sourcelens's YAML-backed configuration, following
// a one-struct-per-file layout with a Default*Config() constructor per
// section (§10.3).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all sourcelens configuration.
type Config struct {
	Scan      ScanConfig      `yaml:"scan" json:"scan"`
	Retention RetentionConfig `yaml:"retention" json:"retention"`
	Pattern   PatternConfig   `yaml:"pattern" json:"pattern"`
	Outliers  OutliersConfig  `yaml:"outliers" json:"outliers"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan:      DefaultScanConfig(),
		Retention: DefaultRetentionConfig(),
		Pattern:   DefaultPatternConfig(),
		Outliers:  DefaultOutliersConfig(),
		Store:     DefaultStoreConfig(),
		Logging:   DefaultLoggingConfig(),
	}
}

// Load loads configuration from a YAML file at path, falling back to
// defaults if the file does not exist. Environment variable overrides are
// applied after the file is parsed.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file at path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides on top of a
// loaded/default config.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("SOURCELENS_DB"); path != "" {
		c.Store.Path = path
	}
	if v := os.Getenv("SOURCELENS_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
	if v := os.Getenv("SOURCELENS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
