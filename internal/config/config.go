// Package config holds the user configuration, loaded from
// ~/.config/fex/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DirSetting overrides sort options for a single directory path.
type DirSetting struct {
	Sort     string `yaml:"sort"`
	DirFirst *bool  `yaml:"dirfirst"`
	Reverse  *bool  `yaml:"reverse"`
	Hidden   *bool  `yaml:"hidden"`
}

// Config is the user-facing configuration.
type Config struct {
	// Column width ratios, leftmost to rightmost. The last column is the
	// preview column when Preview is set.
	Ratios  []int `yaml:"ratios"`
	Preview bool  `yaml:"preview"`

	Scrolloff int    `yaml:"scrolloff"`
	Hidden    bool   `yaml:"hidden"`
	DirFirst  bool   `yaml:"dirfirst"`
	Reverse   bool   `yaml:"reverse"`
	Sort      string `yaml:"sort"`

	// Reload throttling: minimum gap between reloads of one directory,
	// and the quiet time before a reload fires.
	InotifyTimeoutMs int `yaml:"inotify_timeout_ms"`
	InotifyDelayMs   int `yaml:"inotify_delay_ms"`

	// Delay before the loading indicator shows, and before a preview
	// load fires while the cursor is moving.
	LoadingIndicatorDelayMs int `yaml:"loading_indicator_delay_ms"`
	PreviewDelayMs          int `yaml:"preview_delay_ms"`

	// External previewer program, invoked with the file path.
	Previewer string `yaml:"previewer"`

	// Extensions treated as images when the renderer supports them.
	ImageExtensions []string `yaml:"image_extensions"`

	// Paths with these glob prefixes never get inotify watchers.
	NotifyBlacklist []string `yaml:"notify_blacklist"`

	// Per-directory sort overrides, keyed by absolute path.
	DirSettings map[string]DirSetting `yaml:"dir_settings"`

	// Worker pool size; 0 means NumCPU+1.
	Workers int `yaml:"workers"`

	HistoryFile string `yaml:"history_file"`
	VisitsFile  string `yaml:"visits_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ratios:                  []int{1, 2, 3},
		Preview:                 true,
		Scrolloff:               4,
		DirFirst:                true,
		Sort:                    "natural",
		InotifyTimeoutMs:        1000,
		InotifyDelayMs:          50,
		LoadingIndicatorDelayMs: 250,
		PreviewDelayMs:          250,
		ImageExtensions:         []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"},
		HistoryFile:             filepath.Join(dataDir(), "history"),
		VisitsFile:              filepath.Join(dataDir(), "visits.db"),
	}
}

// Load reads path into a default-initialized Config. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Ratios) == 0 {
		cfg.Ratios = []int{1, 2, 3}
	}
	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fex", "config.yaml")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "fex", "config.yaml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "fex")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "fex")
}

// RuntimeDir returns the per-user runtime directory, falling back to
// /tmp/runtime-$USER when XDG_RUNTIME_DIR is unset.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "fex")
	}
	return fmt.Sprintf("/tmp/runtime-%s/fex", os.Getenv("USER"))
}

// InotifyTimeout returns the reload throttle window.
func (c *Config) InotifyTimeout() time.Duration {
	return time.Duration(c.InotifyTimeoutMs) * time.Millisecond
}

// InotifyDelay returns the reload quiet time.
func (c *Config) InotifyDelay() time.Duration {
	return time.Duration(c.InotifyDelayMs) * time.Millisecond
}

// LoadingIndicatorDelay returns the loading indicator grace period.
func (c *Config) LoadingIndicatorDelay() time.Duration {
	return time.Duration(c.LoadingIndicatorDelayMs) * time.Millisecond
}

// PreviewDelay returns the cursor-resting debounce for preview loads.
func (c *Config) PreviewDelay() time.Duration {
	return time.Duration(c.PreviewDelayMs) * time.Millisecond
}
