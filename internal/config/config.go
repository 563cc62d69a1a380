// Package config provides configuration management for htmltoc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/internal/view"
)

// DefaultListen is the address the HTTP server binds when none is set.
const DefaultListen = ":8080"

// Config holds the htmltoc configuration.
type Config struct {
	Encoding       string `yaml:"encoding,omitempty"`
	Format         string `yaml:"format,omitempty"`
	OutputFormat   string `yaml:"output_format,omitempty"`
	Target         string `yaml:"target,omitempty"`
	StrictWrappers bool   `yaml:"strict_wrappers,omitempty"`
	Debug          bool   `yaml:"debug,omitempty"`
	Listen         string `yaml:"listen,omitempty"`
}

// Validate checks that every set field holds an accepted value.
func (c *Config) Validate() error {
	if _, err := transform.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Encoding != "" {
		if _, _, err := transform.LookupEncoding(c.Encoding); err != nil {
			return err
		}
	}
	if err := view.ValidateFormat(c.OutputFormat); err != nil {
		return err
	}
	return nil
}

// TransformOptions returns the transformation settings held by c.
func (c *Config) TransformOptions() (transform.Options, error) {
	format, err := transform.ParseFormat(c.Format)
	if err != nil {
		return transform.Options{}, err
	}
	return transform.Options{
		Format:         format,
		Encoding:       c.Encoding,
		Target:         c.Target,
		StrictWrappers: c.StrictWrappers,
	}, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: HTMLTOC_* → legacy name (where one exists) → existing config value
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("HTMLTOC_ENCODING"); v != "" {
		c.Encoding = v
	}
	if v := os.Getenv("HTMLTOC_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("HTMLTOC_OUTPUT"); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv("HTMLTOC_TARGET"); v != "" {
		c.Target = v
	}
	if v := os.Getenv("HTMLTOC_LISTEN"); v != "" {
		c.Listen = v
	}
	if b, ok := envBool("HTMLTOC_STRICT_WRAPPERS"); ok {
		c.StrictWrappers = b
	}
	if v := getEnvWithFallback("HTMLTOC_DEBUG", "DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// EnvVars lists the environment variables LoadFromEnv reads.
func EnvVars() []string {
	return []string{"HTMLTOC_ENCODING", "HTMLTOC_FORMAT", "HTMLTOC_OUTPUT", "HTMLTOC_TARGET",
		"HTMLTOC_LISTEN", "HTMLTOC_STRICT_WRAPPERS", "HTMLTOC_DEBUG", "DEBUG"}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// envBool reads a boolean variable. Unset or unparsable values are ignored.
func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "htmltoc", "config.yml")
	}

	// Fall back to ~/.config/htmltoc/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".htmltoc", "config.yml")
	}

	return filepath.Join(home, ".config", "htmltoc", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
