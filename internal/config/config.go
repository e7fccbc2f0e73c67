// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeySearchDelay    = "search.delay"
	KeyPersistenceKey = "preferences.commodity_unit_key"
	KeyDatabasePath   = "database.path"
	KeyRegionAPIURL   = "regions.api_url"
	KeyRequestTimeout = "regions.timeout"
	KeyScreenWidth    = "ui.width"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// Defaults.
const (
	DefaultSearchDelay    = time.Second
	DefaultPersistenceKey = "selected_commodity_unit_id"
	DefaultDatabasePath   = "~/.local/share/farmprefs/farmprefs.db"
	DefaultRequestTimeout = 10 * time.Second
	DefaultScreenWidth    = 80
)

// Config holds the settings fixed at process start.
type Config struct {
	PersistenceKey string
	DatabasePath   string
	RegionAPIURL   string
	LogLevel       string
	LogFormat      string
	SearchDelay    time.Duration
	RequestTimeout time.Duration
	ScreenWidth    int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		SearchDelay:    DefaultSearchDelay,
		PersistenceKey: DefaultPersistenceKey,
		DatabasePath:   ExpandPath(DefaultDatabasePath),
		RequestTimeout: DefaultRequestTimeout,
		ScreenWidth:    DefaultScreenWidth,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySearchDelay, DefaultSearchDelay)
	v.SetDefault(KeyPersistenceKey, DefaultPersistenceKey)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyScreenWidth, DefaultScreenWidth)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads configuration from v. Values missing from v fall back to
// Default.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v.IsSet(KeySearchDelay) {
		cfg.SearchDelay = v.GetDuration(KeySearchDelay)
	}
	if s := v.GetString(KeyPersistenceKey); s != "" {
		cfg.PersistenceKey = s
	}
	if s := v.GetString(KeyDatabasePath); s != "" {
		cfg.DatabasePath = ExpandPath(s)
	}
	cfg.RegionAPIURL = v.GetString(KeyRegionAPIURL)
	if v.IsSet(KeyRequestTimeout) {
		cfg.RequestTimeout = v.GetDuration(KeyRequestTimeout)
	}
	if v.IsSet(KeyScreenWidth) {
		cfg.ScreenWidth = v.GetInt(KeyScreenWidth)
	}
	if s := v.GetString(KeyLogLevel); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString(KeyLogFormat); s != "" {
		cfg.LogFormat = s
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.SearchDelay < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeySearchDelay)
	}
	if c.PersistenceKey == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyPersistenceKey)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyRequestTimeout)
	}
	if c.ScreenWidth <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyScreenWidth)
	}
	return nil
}
