package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/trackstore/internal/tracking"
)

// Config represents the complete trackstore configuration
type Config struct {
	Tracking TrackingConfig `mapstructure:"tracking" yaml:"tracking"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// TrackingConfig controls how tracking files are locked and written
type TrackingConfig struct {
	// LockRetries is how many times a colliding lock attempt is retried
	// after the first one (default: 8)
	LockRetries int `mapstructure:"lock_retries" yaml:"lock_retries"`
	// LockRetryDelayMs is the pause between lock attempts in milliseconds (default: 50)
	LockRetryDelayMs int `mapstructure:"lock_retry_delay_ms" yaml:"lock_retry_delay_ms"`
	// Header is the comment line written above the entries on every update.
	// Empty writes no comment.
	Header string `mapstructure:"header" yaml:"header"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory trackstore.log is written to.
	// If empty, logs go to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracking: TrackingConfig{
			LockRetries:      8,
			LockRetryDelayMs: 50,
			Header:           tracking.DefaultHeader,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// LockRetryDelay returns the pause between lock attempts as a time.Duration
func (c *TrackingConfig) LockRetryDelay() time.Duration {
	return time.Duration(c.LockRetryDelayMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Tracking defaults
	viper.SetDefault("tracking.lock_retries", defaults.Tracking.LockRetries)
	viper.SetDefault("tracking.lock_retry_delay_ms", defaults.Tracking.LockRetryDelayMs)
	viper.SetDefault("tracking.header", defaults.Tracking.Header)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "trackstore")
	}
	// Fall back to ~/.config/trackstore
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trackstore"
	}
	return filepath.Join(home, ".config", "trackstore")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
