// Package config handles TOML-based configuration loading and validation.
// Values are resolved once at startup and passed explicitly to the components
// that need them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Base        string        `toml:"base"`        // Catalog host, e.g. "hianime.bz"
	Listen      string        `toml:"listen"`      // HTTP listen address
	Timeout     time.Duration `toml:"timeout"`     // Per-request upstream timeout
	LogLevel    string        `toml:"log_level"`   // debug | info | warn | error
	LogFormat   string        `toml:"log_format"`  // auto | text | json
	Fingerprint string        `toml:"fingerprint"` // none | chrome
	Audit       bool          `toml:"audit"`       // Record extraction outcomes
	AuditPath   string        `toml:"audit_path"`  // Overrides the XDG data location
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:        "hianime.bz",
		Listen:      ":3000",
		Timeout:     15 * time.Second,
		LogLevel:    "info",
		LogFormat:   "auto",
		Fingerprint: "none",
		Audit:       true,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kaizoku"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kaizoku"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, merges it with defaults and applies
// environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv lets PORT override the listen port, as hosting platforms expect.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			c.Listen = ":" + port
		}
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Base == "" {
		return fmt.Errorf("base host cannot be empty")
	}
	if strings.Contains(c.Base, "://") || strings.Contains(c.Base, "/") {
		return fmt.Errorf("base must be a bare host, got %q", c.Base)
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if c.Timeout <= 0 || c.Timeout > 5*time.Minute {
		return fmt.Errorf("timeout %s out of range (0, 5m]", c.Timeout)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unsupported log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	validFormats := map[string]bool{"auto": true, "text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("unsupported log format %q (valid: auto, text, json)", c.LogFormat)
	}

	validFingerprints := map[string]bool{"none": true, "chrome": true}
	if !validFingerprints[strings.ToLower(c.Fingerprint)] {
		return fmt.Errorf("unsupported fingerprint %q (valid: none, chrome)", c.Fingerprint)
	}

	return nil
}

// ExpandAuditPath resolves the audit database location, honoring ~ and
// falling back to the XDG data directory.
func (c *Config) ExpandAuditPath() (string, error) {
	path := c.AuditPath
	if path == "" {
		return AuditPath()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// AuditPath returns the default path to the audit database.
func AuditPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kaizoku", "audit.db"), nil
}
