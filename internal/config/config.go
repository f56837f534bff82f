// Package config manages global flyward configuration.
//
// Configuration is stored in YAML at ~/.config/flyward/config.yaml and is
// entirely optional: every command works with defaults, flags override
// whatever the file provides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTokenPrefix is the name prefix for minted deploy tokens. The
// full name carries the current date for auditability.
const DefaultTokenPrefix = "github-actions-deploy"

// Config holds the global flyward configuration.
type Config struct {
	// App is the Fly.io app name. Empty means flyctl's own resolution
	// (fly.toml in the working directory) applies.
	App string `yaml:"app,omitempty"`

	// Org is the Fly.io organization, displayed in doctor output only.
	Org string `yaml:"org,omitempty"`

	Token   TokenConfig   `yaml:"token"`
	Secrets SecretsConfig `yaml:"secrets"`
}

// TokenConfig controls deploy token minting.
type TokenConfig struct {
	// NamePrefix is prepended to the date-derived token name.
	NamePrefix string `yaml:"name_prefix,omitempty"`

	// Expiry is passed to flyctl as the token lifetime. Zero means
	// flyctl's default.
	Expiry Duration `yaml:"expiry,omitempty"`
}

// SecretsConfig controls `flyward secrets sync`.
type SecretsConfig struct {
	// EnvFile is the dotenv file to read app secrets from.
	EnvFile string `yaml:"env_file,omitempty"`

	// Keys limits which env file entries are synced. Empty syncs all.
	Keys []string `yaml:"keys,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Token:   TokenConfig{NamePrefix: DefaultTokenPrefix},
		Secrets: SecretsConfig{EnvFile: ".env"},
	}
}

// Path returns the config file path. FLYWARD_CONFIG overrides the
// XDG-derived default.
func Path() string {
	if p := os.Getenv("FLYWARD_CONFIG"); p != "" {
		return p
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "flyward", "config.yaml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "flyward", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "flyward", "config.yaml")
}

// Load reads the configuration from disk, returning defaults when no
// file exists.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Token.NamePrefix == "" {
		cfg.Token.NamePrefix = DefaultTokenPrefix
	}
	return cfg, nil
}

// Save writes the configuration to disk atomically.
func (c *Config) Save() error {
	configPath := Path()

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp config file: %w", err)
	}
	return nil
}

// TokenName derives a deploy token name from the prefix and the given
// date, e.g. "github-actions-deploy-2026-08-31".
func (c *Config) TokenName(now time.Time) string {
	prefix := c.Token.NamePrefix
	if prefix == "" {
		prefix = DefaultTokenPrefix
	}
	return prefix + "-" + now.Format("2006-01-02")
}

// Duration wraps time.Duration for human-readable YAML values like "720h".
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if dur < 0 {
		return fmt.Errorf("duration cannot be negative: %s", s)
	}

	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}
