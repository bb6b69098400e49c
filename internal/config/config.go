package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// APIConfig holds the remote sign-up-sheets REST endpoint and the fixed
// basic-auth credential every call carries.
type APIConfig struct {
	// BaseURL is the REST root, e.g. "https://jeugdherk.be/wp-json/jvgh/v1".
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Username/Password form the basic-auth credential. The password may be
	// overridden via the KANTINE_API_PASSWORD environment variable so it can
	// stay out of the config file.
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// FeedConfig describes the public match-fixture calendar feed.
type FeedConfig struct {
	// URL is the plain-text calendar feed endpoint, fetched without credentials.
	URL string `yaml:"url" json:"url"`
	// HomeVenue is the venue name that must appear left of the "/" in a
	// fixture summary for the fixture to count as a home match.
	HomeVenue string `yaml:"home_venue" json:"home_venue"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the local Web API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the local API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the canonical planning zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic fixture-feed refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is how far ahead recurring fixtures are expanded.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// LogLevel is the minimum log level ("debug", "info", "error").
	LogLevel string `yaml:"log_level" json:"log_level"`

	// PrefsPath is where the best-effort preference store lives.
	PrefsPath string `yaml:"prefs_path" json:"prefs_path"`

	API  APIConfig  `yaml:"api" json:"api"`
	Feed FeedConfig `yaml:"feed" json:"feed"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all local
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Europe/Brussels",
		RefreshCron: "*/15 * * * *",
		HorizonDays: 120,
		LogLevel:    "info",
		PrefsPath:   "./var/prefs.json",
		API: APIConfig{
			BaseURL: "https://jeugdherk.be/wp-json/jvgh/v1",
		},
		Feed: FeedConfig{
			URL:       "https://jeugdherk.be/calendar/jvgh-kalender/?feed=sp-ical",
			HomeVenue: "Herk-De-Stad",
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Brussels"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 120
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PrefsPath == "" {
		c.PrefsPath = "./var/prefs.json"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://jeugdherk.be/wp-json/jvgh/v1"
	}
	if c.Feed.HomeVenue == "" {
		c.Feed.HomeVenue = "Herk-De-Stad"
	}

	// Environment overrides keep the API credential out of the config file.
	if user := os.Getenv("KANTINE_API_USERNAME"); user != "" {
		c.API.Username = user
	}
	if pw := os.Getenv("KANTINE_API_PASSWORD"); pw != "" {
		c.API.Password = pw
	}
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".kantinedienst-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
