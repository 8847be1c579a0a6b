package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WatcherConfig tunes file discovery.
type WatcherConfig struct {
	// SettleDelay is how long a file must stay quiet after its last write
	// before it is probed for readiness
	SettleDelay time.Duration `yaml:"settle_delay"`

	// ReadyRetries is how many readiness probes a settled file gets before
	// it is given up on
	ReadyRetries int `yaml:"ready_retries"`

	// ReadyDelay is the pause between readiness probes
	ReadyDelay time.Duration `yaml:"ready_delay"`
}

// HistoryConfig controls the copy-pass journal.
type HistoryConfig struct {
	// Enabled turns journal recording on
	Enabled bool `yaml:"enabled"`

	// KeepDays is how long passes are kept before pruning (0 = forever)
	KeepDays int `yaml:"keep_days"`
}

// Config represents trackcopy configuration options
type Config struct {
	// ListenAddr is the host:port the control API binds to
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// HTTPTimeout bounds one-shot CLI calls to the control API
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Watcher contains file discovery tuning
	Watcher WatcherConfig `yaml:"watcher"`

	// History contains journal configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  "127.0.0.1:5000",
		LogLevel:    "info",
		LogDir:      ".trackcopy/logs",
		HTTPTimeout: 10 * time.Second,
		Watcher: WatcherConfig{
			SettleDelay:  500 * time.Millisecond,
			ReadyRetries: 3,
			ReadyDelay:   time.Second,
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepDays: 90,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Temporary struct so durations can be written as strings like "750ms"
	type yamlWatcher struct {
		SettleDelay  string `yaml:"settle_delay"`
		ReadyRetries int    `yaml:"ready_retries"`
		ReadyDelay   string `yaml:"ready_delay"`
	}
	type yamlHistory struct {
		Enabled  bool `yaml:"enabled"`
		KeepDays int  `yaml:"keep_days"`
	}
	type yamlConfig struct {
		ListenAddr  string      `yaml:"listen_addr"`
		LogLevel    string      `yaml:"log_level"`
		LogDir      string      `yaml:"log_dir"`
		HTTPTimeout string      `yaml:"http_timeout"`
		Watcher     yamlWatcher `yaml:"watcher"`
		History     yamlHistory `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ListenAddr != "" {
		cfg.ListenAddr = yamlCfg.ListenAddr
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid http_timeout format %q: %w", yamlCfg.HTTPTimeout, err)
		}
		cfg.HTTPTimeout = timeout
	}

	// Nested sections merge key by key so an explicit zero (keep_days: 0)
	// is distinguishable from an omitted key.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, ok := rawMap["watcher"].(map[string]interface{}); ok {
			if _, exists := section["settle_delay"]; exists {
				d, err := time.ParseDuration(yamlCfg.Watcher.SettleDelay)
				if err != nil {
					return nil, fmt.Errorf("invalid watcher.settle_delay format %q: %w", yamlCfg.Watcher.SettleDelay, err)
				}
				cfg.Watcher.SettleDelay = d
			}
			if _, exists := section["ready_retries"]; exists {
				cfg.Watcher.ReadyRetries = yamlCfg.Watcher.ReadyRetries
			}
			if _, exists := section["ready_delay"]; exists {
				d, err := time.ParseDuration(yamlCfg.Watcher.ReadyDelay)
				if err != nil {
					return nil, fmt.Errorf("invalid watcher.ready_delay format %q: %w", yamlCfg.Watcher.ReadyDelay, err)
				}
				cfg.Watcher.ReadyDelay = d
			}
		}
		if section, ok := rawMap["history"].(map[string]interface{}); ok {
			if _, exists := section["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := section["keep_days"]; exists {
				cfg.History.KeepDays = yamlCfg.History.KeepDays
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from config.yaml in the trackcopy
// home directory. A missing file yields defaults.
func LoadConfigFromHome() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(listenAddr *string, logLevel *string, logDir *string) {
	if listenAddr != nil {
		c.ListenAddr = *listenAddr
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen_addr %q: %w", c.ListenAddr, err)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must be >= 0, got %v", c.HTTPTimeout)
	}

	if c.Watcher.SettleDelay < 0 {
		return fmt.Errorf("watcher.settle_delay must be >= 0, got %v", c.Watcher.SettleDelay)
	}
	if c.Watcher.ReadyRetries < 1 {
		return fmt.Errorf("watcher.ready_retries must be >= 1, got %d", c.Watcher.ReadyRetries)
	}
	if c.Watcher.ReadyDelay < 0 {
		return fmt.Errorf("watcher.ready_delay must be >= 0, got %v", c.Watcher.ReadyDelay)
	}

	if c.History.KeepDays < 0 {
		return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
	}

	return nil
}
