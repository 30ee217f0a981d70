// Package config holds the site builder's runtime configuration: the service
// settings loaded from a YAML file plus environment overrides, and the site's
// global template context loaded from the content tree.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the service configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Watch   WatchConfig   `yaml:"watch"`
	Serve   ServeConfig   `yaml:"serve"`
	Metrics MetricsConfig `yaml:"metrics"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Serve.Validate(); err != nil {
		return err
	}
	return c.Notify.Validate()
}

// SourceConfig selects where content comes from: a local directory, or a git
// repository cloned at startup.
type SourceConfig struct {
	Root      string `yaml:"root"`
	GitURL    string `yaml:"git_url"`
	GitBranch string `yaml:"git_branch"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if c.Root == "" && c.GitURL == "" {
		return fmt.Errorf("source: either root or git_url must be set")
	}
	return nil
}

// WatchConfig tunes the change debouncer and the rebuild retry loop.
type WatchConfig struct {
	QuietWindow   time.Duration `yaml:"quiet_window"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxRetries    int           `yaml:"max_retries"`
	// FullRebuildEvery schedules a periodic full rebuild as a safety net for
	// missed filesystem events. Zero disables it.
	FullRebuildEvery time.Duration `yaml:"full_rebuild_every"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.QuietWindow, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.MaxDelay, validation.Required, validation.Min(c.QuietWindow)),
		validation.Field(&c.RetryInterval, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
	)
}

// ServeConfig holds the preview server settings.
type ServeConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server address.
func (c *ServeConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// MetricsConfig enables the Prometheus endpoint on the preview server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// HistoryConfig holds the build-history database location. An empty path
// disables history recording.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig holds optional NATS build-event publishing settings.
type NotifyConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Validate validates the notify configuration.
func (c *NotifyConfig) Validate() error {
	if c.URL == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Subject, validation.Required),
	)
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Source: SourceConfig{Root: "."},
		Watch: WatchConfig{
			QuietWindow:   300 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			RetryInterval: 2 * time.Second,
			MaxRetries:    5,
		},
		Serve:  ServeConfig{Port: 8080},
		Notify: NotifyConfig{Subject: "sitebuilder.builds"},
	}
}

// Load reads a YAML config file, applies .env/environment overrides, and
// validates the result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEBUILDER_ROOT"); v != "" {
		cfg.Source.Root = v
	}
	if v := os.Getenv("SITEBUILDER_GIT_URL"); v != "" {
		cfg.Source.GitURL = v
	}
	if v := os.Getenv("SITEBUILDER_NATS_URL"); v != "" {
		cfg.Notify.URL = v
	}
	if v := os.Getenv("SITEBUILDER_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}
