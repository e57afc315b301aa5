package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/trackstore/internal/tracking"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default tracking config
	if cfg.Tracking.LockRetries != 8 {
		t.Errorf("Tracking.LockRetries = %d, want 8", cfg.Tracking.LockRetries)
	}
	if cfg.Tracking.LockRetryDelayMs != 50 {
		t.Errorf("Tracking.LockRetryDelayMs = %d, want 50", cfg.Tracking.LockRetryDelayMs)
	}
	if cfg.Tracking.Header != tracking.DefaultHeader {
		t.Errorf("Tracking.Header = %q, want %q", cfg.Tracking.Header, tracking.DefaultHeader)
	}

	// Verify default logging config
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Dir != "" {
		t.Errorf("Logging.Dir = %q, want empty", cfg.Logging.Dir)
	}
}

func TestTrackingConfig_LockRetryDelay(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{0, 0},
		{50, 50 * time.Millisecond},
		{1500, 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		cfg := &TrackingConfig{LockRetryDelayMs: tt.ms}
		if got := cfg.LockRetryDelay(); got != tt.want {
			t.Errorf("LockRetryDelay() with %dms = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := filepath.Join("/custom/config", "trackstore")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "trackstore")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := filepath.Join("/custom/config", "trackstore", "config.yaml")
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Load() should return defaults when no config file exists
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tracking.LockRetries != 8 {
		t.Errorf("Tracking.LockRetries = %d, want 8", cfg.Tracking.LockRetries)
	}
	if cfg.Tracking.Header != tracking.DefaultHeader {
		t.Errorf("Tracking.Header = %q, want default", cfg.Tracking.Header)
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "tracking:\n  lock_retries: 3\n  lock_retry_delay_ms: 10\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tracking.LockRetries != 3 {
		t.Errorf("Tracking.LockRetries = %d, want 3", cfg.Tracking.LockRetries)
	}
	if cfg.Tracking.LockRetryDelay() != 10*time.Millisecond {
		t.Errorf("Tracking.LockRetryDelay() = %v, want 10ms", cfg.Tracking.LockRetryDelay())
	}
	if cfg.Tracking.Header != tracking.DefaultHeader {
		t.Errorf("Tracking.Header = %q, want default for unset key", cfg.Tracking.Header)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("tracking.lock_retries", -1)

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	if _, ok := err.(ValidationErrors); !ok {
		t.Errorf("Load() error type = %T, want ValidationErrors", err)
	}
	if cfg != nil {
		t.Errorf("Load() config = %+v, want nil on error", cfg)
	}
}
