// Package config provides configuration loading and management for fsharpstyle.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simontreanor/fsharpstyle"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the complete fsharpstyle configuration
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Compose ComposeConfig `yaml:"compose"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig selects where rules come from
type CatalogConfig struct {
	// Paths are catalog files or doublestar globs, read in order after the built-in rules
	Paths []string `yaml:"paths"`
	// ExcludeDefault drops the built-in golden prompts
	ExcludeDefault bool `yaml:"exclude_default"`
	// MaxRuleLength rejects loaded rules longer than this many bytes (0 = no limit)
	MaxRuleLength int `yaml:"max_rule_length"`
}

// ComposeConfig configures composition defaults
type ComposeConfig struct {
	// Tags are used when a command is given no tags
	Tags []string `yaml:"tags"`
	// Format is the renderer name (plain, markdown, xml)
	Format string `yaml:"format"`
	// RepeatDuplicates emits a tag's rules every time it is requested
	RepeatDuplicates bool `yaml:"repeat_duplicates"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is a zap level name (debug, info, warn, error)
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Compose: ComposeConfig{
			Tags:   tagNames(fsharpstyle.AllTags()),
			Format: "plain",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := fsharpstyle.ParseTags(c.Compose.Tags); err != nil {
		return fmt.Errorf("compose.tags: %w", err)
	}
	switch c.Compose.Format {
	case "plain", "text", "markdown", "md", "xml":
	default:
		return fmt.Errorf("compose.format %q is not one of plain, markdown, xml", c.Compose.Format)
	}
	if c.Catalog.MaxRuleLength < 0 {
		return fmt.Errorf("catalog.max_rule_length must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Tags returns the parsed default compose tags.
func (c *Config) Tags() ([]fsharpstyle.Tag, error) {
	return fsharpstyle.ParseTags(c.Compose.Tags)
}

// LoadFromFile loads configuration from a YAML file. Relative catalog paths
// are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	dir := filepath.Dir(path)
	for i, p := range config.Catalog.Paths {
		if !filepath.IsAbs(p) {
			config.Catalog.Paths[i] = filepath.Join(dir, p)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Catalog paths accumulate across layers
	c.Catalog.Paths = append(c.Catalog.Paths, other.Catalog.Paths...)
	if other.Catalog.ExcludeDefault {
		c.Catalog.ExcludeDefault = true
	}
	if other.Catalog.MaxRuleLength != 0 {
		c.Catalog.MaxRuleLength = other.Catalog.MaxRuleLength
	}

	// Compose
	if len(other.Compose.Tags) > 0 {
		c.Compose.Tags = append([]string(nil), other.Compose.Tags...)
	}
	if other.Compose.Format != "" {
		c.Compose.Format = other.Compose.Format
	}
	if other.Compose.RepeatDuplicates {
		c.Compose.RepeatDuplicates = true
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

func tagNames(tags []fsharpstyle.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return names
}
