package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/api"
	"github.com/fernwright/trackcopy/internal/config"
	"github.com/fernwright/trackcopy/internal/settings"
)

// addClientFlags registers the flags shared by the commands that talk to
// a running watch session over its control API.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: <trackcopy home>/config.yaml)")
	cmd.Flags().String("addr", "", "Control API address (default: listen_addr from config)")
}

// loadCLIConfig loads the app config, honoring an explicit --config path
// when the command defines that flag.
func loadCLIConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newAPIClient builds the control API client for a one-shot command.
func newAPIClient(cmd *cobra.Command) (*api.Client, error) {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return nil, err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	return api.NewClient("http://"+addr, cfg.HTTPTimeout), nil
}

// loadSettingsFile loads the saved session settings and reports the path
// they came from, for commands that work on the settings directly.
func loadSettingsFile() (*settings.Settings, string, error) {
	path, err := config.SettingsPath()
	if err != nil {
		return nil, "", fmt.Errorf("resolve settings path: %w", err)
	}
	st, err := settings.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load settings: %w", err)
	}
	return st, path, nil
}
