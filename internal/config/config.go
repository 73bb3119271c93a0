package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dupescan/dupescan/pkg/utils"
)

// Config represents the application configuration
type Config struct {
	MinFileSize     string   `yaml:"min_file_size"` // e.g. "0B", "1KB"
	MaxFileSize     string   `yaml:"max_file_size"` // empty = unlimited
	ExcludePatterns []string `yaml:"exclude_patterns"`
	Workers         int      `yaml:"workers"` // 0 = auto
	DryRun          bool     `yaml:"dry_run"`
	Verbose         bool     `yaml:"verbose"`
	Output          string   `yaml:"output"` // summary, table, json, yaml
}

// Load loads configuration from a file. A missing file yields the default
// configuration rather than an error.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a file
func Save(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.MinBytes(); err != nil {
		return fmt.Errorf("invalid min_file_size: %w", err)
	}
	if _, err := c.MaxBytes(); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	switch c.Output {
	case "summary", "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output)
	}

	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// MinBytes returns the parsed minimum file size in bytes.
func (c *Config) MinBytes() (int64, error) {
	return utils.ParseSize(c.MinFileSize)
}

// MaxBytes returns the parsed maximum file size in bytes, 0 meaning
// no upper limit.
func (c *Config) MaxBytes() (int64, error) {
	return utils.ParseSize(c.MaxFileSize)
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "dupescan")
	return filepath.Join(configDir, "config.yaml"), nil
}
