package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/wppview/internal/bucket"
	"github.com/matheus3301/wppview/internal/content"
	"github.com/matheus3301/wppview/internal/search"
)

// DefaultPageSize is the number of records read per page from the store.
const DefaultPageSize = 50

// Config represents the global ~/.wppview/config.toml.
// Display strings are locale-dependent and default to English.
type Config struct {
	DefaultSession string `toml:"default_session"`
	Placeholder    string `toml:"placeholder"`
	TodayLabel     string `toml:"today_label"`
	YesterdayLabel string `toml:"yesterday_label"`
	MarkOpen       string `toml:"mark_open"`
	MarkClose      string `toml:"mark_close"`
	PageSize       int    `toml:"page_size"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	return (&Config{}).WithDefaults()
}

// WithDefaults returns a copy of cfg with empty fields filled in.
func (c *Config) WithDefaults() *Config {
	out := *c
	labels := bucket.DefaultLabels()
	if out.Placeholder == "" {
		out.Placeholder = content.DefaultPlaceholder
	}
	if out.TodayLabel == "" {
		out.TodayLabel = labels.Today
	}
	if out.YesterdayLabel == "" {
		out.YesterdayLabel = labels.Yesterday
	}
	if out.MarkOpen == "" && out.MarkClose == "" {
		out.MarkOpen = search.DefaultMarker.Open
		out.MarkClose = search.DefaultMarker.Close
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	return &out
}

// Validate checks fields that have no safe default substitute.
func (c *Config) Validate() error {
	if err := c.Marker().Validate(); err != nil {
		return fmt.Errorf("mark_open/mark_close %q/%q: %w", c.MarkOpen, c.MarkClose, err)
	}
	return nil
}

// Labels returns the bucket labels from the config.
func (c *Config) Labels() bucket.Labels {
	return bucket.Labels{Today: c.TodayLabel, Yesterday: c.YesterdayLabel}
}

// Marker returns the highlight marker from the config.
func (c *Config) Marker() search.Marker {
	return search.Marker{Open: c.MarkOpen, Close: c.MarkClose}
}

// Load reads config from the given path. Returns nil and an error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to Default when the
// file does not exist. Other errors, including a failed Validate, are returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
