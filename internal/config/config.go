// Package config loads godotime settings from a TOML file and scrapes
// api credentials from the shared ~/.wakatime.cfg.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the godotime settings file, ~/.config/godotime/config.toml.
type Config struct {
	// Project overrides the project name; default is the base name of
	// the workspace root the editor reports.
	Project string `toml:"project"`

	// CooldownSeconds is the per-file heartbeat cooldown window.
	CooldownSeconds int `toml:"cooldown_seconds"`

	// BranchStrategy is one of "git", "dotgit" or "none".
	BranchStrategy string `toml:"branch_strategy"`

	// BranchCacheSeconds caches branch lookups per workspace root.
	// 0 disables the cache.
	BranchCacheSeconds int `toml:"branch_cache_seconds"`

	// WakatimeCLI is the path to the wakatime-cli binary. Empty disables
	// the wakatime-cli sink.
	WakatimeCLI string `toml:"wakatime_cli"`

	// LogFile receives the JSON activity log. Empty disables it.
	LogFile string `toml:"log_file"`

	// Debug raises log verbosity.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CooldownSeconds:    120,
		BranchStrategy:     "dotgit",
		BranchCacheSeconds: 30,
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.BranchStrategy {
	case "git", "dotgit", "none":
	default:
		return fmt.Errorf("invalid branch_strategy %q", c.BranchStrategy)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must not be negative")
	}
	return nil
}

// Load reads the TOML file at path, falling back to defaults when the
// file does not exist. Unset fields keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath is the standard settings file location.
func DefaultPath() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "godotime", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "godotime", "config.toml")
}
