package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != "127.0.0.1:5000" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "127.0.0.1:5000")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != ".trackcopy/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, ".trackcopy/logs")
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Watcher.SettleDelay != 500*time.Millisecond {
		t.Errorf("Watcher.SettleDelay = %v, want 500ms", cfg.Watcher.SettleDelay)
	}
	if cfg.Watcher.ReadyRetries != 3 {
		t.Errorf("Watcher.ReadyRetries = %d, want 3", cfg.Watcher.ReadyRetries)
	}
	if cfg.Watcher.ReadyDelay != time.Second {
		t.Errorf("Watcher.ReadyDelay = %v, want 1s", cfg.Watcher.ReadyDelay)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.KeepDays != 90 {
		t.Errorf("History.KeepDays = %d, want 90", cfg.History.KeepDays)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `listen_addr: 127.0.0.1:6100
log_level: debug
log_dir: /tmp/trackcopy-logs
http_timeout: 30s
watcher:
  settle_delay: 750ms
  ready_retries: 5
  ready_delay: 2s
history:
  enabled: false
  keep_days: 14
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:6100" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "127.0.0.1:6100")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogDir != "/tmp/trackcopy-logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/tmp/trackcopy-logs")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.Watcher.SettleDelay != 750*time.Millisecond {
		t.Errorf("Watcher.SettleDelay = %v, want 750ms", cfg.Watcher.SettleDelay)
	}
	if cfg.Watcher.ReadyRetries != 5 {
		t.Errorf("Watcher.ReadyRetries = %d, want 5", cfg.Watcher.ReadyRetries)
	}
	if cfg.Watcher.ReadyDelay != 2*time.Second {
		t.Errorf("Watcher.ReadyDelay = %v, want 2s", cfg.Watcher.ReadyDelay)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.History.KeepDays != 14 {
		t.Errorf("History.KeepDays = %d, want 14", cfg.History.KeepDays)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:5000" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q (default)", cfg.LogLevel, "info")
	}
}

// TestLoadConfigInvalidYAML tests error handling for malformed YAML
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
listen_addr: 127.0.0.1:6100
http_timeout: [this is not valid
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("LoadConfig() expected error for invalid YAML, got nil")
	}
}

// TestLoadConfigPartialValues tests that partial config merges with defaults
func TestLoadConfigPartialValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: warn
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.ListenAddr != "127.0.0.1:5000" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
	if cfg.Watcher.SettleDelay != 500*time.Millisecond {
		t.Errorf("Watcher.SettleDelay = %v, want default 500ms", cfg.Watcher.SettleDelay)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want default true")
	}
}

// TestLoadConfigNestedPartial tests key-by-key merging of nested sections
func TestLoadConfigNestedPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// keep_days: 0 is explicit and must survive the merge, while the
	// omitted watcher delays keep their defaults.
	configContent := `watcher:
  ready_retries: 7
history:
  keep_days: 0
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Watcher.ReadyRetries != 7 {
		t.Errorf("Watcher.ReadyRetries = %d, want 7", cfg.Watcher.ReadyRetries)
	}
	if cfg.Watcher.SettleDelay != 500*time.Millisecond {
		t.Errorf("Watcher.SettleDelay = %v, want default 500ms", cfg.Watcher.SettleDelay)
	}
	if cfg.Watcher.ReadyDelay != time.Second {
		t.Errorf("Watcher.ReadyDelay = %v, want default 1s", cfg.Watcher.ReadyDelay)
	}
	if cfg.History.KeepDays != 0 {
		t.Errorf("History.KeepDays = %d, want explicit 0", cfg.History.KeepDays)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want default true")
	}
}

// TestLoadConfigBadDuration tests error handling for unparseable durations
func TestLoadConfigBadDuration(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad http_timeout", "http_timeout: fast\n"},
		{"bad settle_delay", "watcher:\n  settle_delay: soon\n"},
		{"bad ready_delay", "watcher:\n  ready_delay: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if _, err := LoadConfig(configPath); err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

// TestMergeWithFlags tests CLI flag precedence over config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	listenAddr := "0.0.0.0:7000"
	logLevel := "debug"
	cfg.MergeWithFlags(&listenAddr, &logLevel, nil)

	if cfg.ListenAddr != "0.0.0.0:7000" {
		t.Errorf("ListenAddr = %q, want flag value", cfg.ListenAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want flag value", cfg.LogLevel)
	}
	if cfg.LogDir != ".trackcopy/logs" {
		t.Errorf("LogDir = %q, nil flag must not override", cfg.LogDir)
	}
}

// TestValidate tests configuration validation rules
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.ListenAddr = "127.0.0.1" }, true},
		{"empty addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"negative http timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, true},
		{"negative settle delay", func(c *Config) { c.Watcher.SettleDelay = -1 }, true},
		{"zero ready retries", func(c *Config) { c.Watcher.ReadyRetries = 0 }, true},
		{"negative keep days", func(c *Config) { c.History.KeepDays = -1 }, true},
		{"zero keep days is valid", func(c *Config) { c.History.KeepDays = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
