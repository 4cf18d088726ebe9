// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/wardrota/wardrota/internal/availability"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Config holds the application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Remote  RemoteConfig  `toml:"remote"`
	Editor  EditorConfig  `toml:"editor"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects where availability is kept.
type StorageConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "remote"
	DBPath  string `toml:"db_path"`
}

// RemoteConfig holds scheduling API settings.
type RemoteConfig struct {
	BaseURL   string  `toml:"base_url"`
	APIKey    string  `toml:"api_key"`
	Timeout   string  `toml:"timeout"`    // e.g., "10s"
	SaveRate  float64 `toml:"save_rate"`  // saves per second, 0 disables throttling
	SaveBurst int     `toml:"save_burst"` // saves allowed back to back
	RedisAddr string  `toml:"redis_addr"` // empty disables the directory cache
	CacheTTL  string  `toml:"cache_ttl"`  // e.g., "5m"
}

// EditorConfig controls how grids are written back.
type EditorConfig struct {
	Encoding       string `toml:"encoding"`         // "runs" or "bounding"
	EmptyDayMarker bool   `toml:"empty_day_marker"` // write 00:00-00:00 for empty days
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // zerolog level name
	File  string `toml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			DBPath:  defaultDBPath(),
		},
		Remote: RemoteConfig{
			Timeout:   "10s",
			SaveRate:  2,
			SaveBurst: 1,
			CacheTTL:  "5m",
		},
		Editor: EditorConfig{
			Encoding:       availability.ModeRuns.String(),
			EmptyDayMarker: true,
		},
		UI: UIConfig{
			Theme: "mocha",
		},
		Log: LogConfig{
			Level: "info",
			File:  defaultLogPath(),
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wardrota.db"
	}
	return filepath.Join(home, ".local", "share", "wardrota", "wardrota.db")
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wardrota.log"
	}
	return filepath.Join(home, ".local", "state", "wardrota", "wardrota.log")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "wardrota", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	// Storage overrides
	if v := os.Getenv("WARDROTA_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("WARDROTA_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	// Remote overrides
	if v := os.Getenv("WARDROTA_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("WARDROTA_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
	}
	if v := os.Getenv("WARDROTA_REDIS_ADDR"); v != "" {
		cfg.Remote.RedisAddr = v
	}
	if v := os.Getenv("WARDROTA_SAVE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("WARDROTA_SAVE_RATE: %w", err)
		}
		cfg.Remote.SaveRate = rate
	}

	// Editor overrides
	if v := os.Getenv("WARDROTA_ENCODING"); v != "" {
		cfg.Editor.Encoding = v
	}
	if v := os.Getenv("WARDROTA_EMPTY_DAY_MARKER"); v != "" {
		marker, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WARDROTA_EMPTY_DAY_MARKER: %w", err)
		}
		cfg.Editor.EmptyDayMarker = marker
	}

	// UI overrides
	if v := os.Getenv("WARDROTA_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}

	// Log overrides
	if v := os.Getenv("WARDROTA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WARDROTA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case BackendRemote:
		if c.Remote.BaseURL == "" {
			return errors.New("remote.base_url must be set for the remote backend")
		}
		if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
			return fmt.Errorf("remote.base_url must be an http(s) URL, got %q", c.Remote.BaseURL)
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Remote.SaveRate < 0 {
		return errors.New("remote.save_rate must not be negative")
	}
	if c.Remote.SaveBurst < 1 {
		return errors.New("remote.save_burst must be at least 1")
	}

	if _, err := availability.ParseEncodeMode(c.Editor.Encoding); err != nil {
		return err
	}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return fmt.Errorf("unknown theme: %q", c.UI.Theme)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

var validThemes = map[string]bool{
	"mocha":     true,
	"macchiato": true,
	"frappe":    true,
	"latte":     true,
}

// RequestTimeout parses remote.timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	return parsePositiveDuration(c.Remote.Timeout, "remote.timeout")
}

// CacheTTL parses remote.cache_ttl. Zero disables caching.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Remote.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Remote.CacheTTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("remote.cache_ttl must be a duration like 5m, got %q", c.Remote.CacheTTL)
	}
	return d, nil
}

func parsePositiveDuration(s, field string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 10s, got %q", field, s)
	}
	return d, nil
}

// Codec builds the availability codec selected by the editor settings.
func (c *Config) Codec() availability.Codec {
	mode, err := availability.ParseEncodeMode(c.Editor.Encoding)
	if err != nil {
		mode = availability.ModeRuns
	}
	return availability.Codec{Mode: mode, EmptyDayMarker: c.Editor.EmptyDayMarker}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
