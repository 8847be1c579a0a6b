package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetTrackcopyHome returns the trackcopy home directory.
// Priority order:
//  1. TRACKCOPY_HOME environment variable (if set)
//  2. nearest ancestor directory holding a .trackcopy-root marker or an
//     existing .trackcopy directory
//  3. .trackcopy under the current working directory (fallback)
//
// Except for the environment variable case the directory is created if it
// doesn't exist.
func GetTrackcopyHome() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return GetTrackcopyHomeFrom(cwd)
}

// GetTrackcopyHomeFrom resolves the home directory as if startDir were the
// working directory.
func GetTrackcopyHomeFrom(startDir string) (string, error) {
	if home := os.Getenv("TRACKCOPY_HOME"); home != "" {
		return home, nil
	}

	if root := findProjectRootFrom(startDir); root != "" {
		home := filepath.Join(root, ".trackcopy")
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create trackcopy home directory: %w", err)
		}
		return home, nil
	}

	home := filepath.Join(startDir, ".trackcopy")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create trackcopy home directory: %w", err)
	}
	return home, nil
}

// findProjectRootFrom walks up from startDir looking for a .trackcopy-root
// marker file or an existing .trackcopy directory, so commands run from a
// subdirectory share the project's session state. Returns "" when no root
// is found.
func findProjectRootFrom(startDir string) string {
	current := startDir
	for {
		markerPath := filepath.Join(current, ".trackcopy-root")
		if _, err := os.Stat(markerPath); err == nil {
			return current
		}

		dotDir := filepath.Join(current, ".trackcopy")
		if info, err := os.Stat(dotDir); err == nil && info.IsDir() {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return ""
}

// ConfigPath returns the path of the optional config file,
// $TRACKCOPY_HOME/config.yaml.
func ConfigPath() (string, error) {
	home, err := GetTrackcopyHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// SettingsPath returns the path of the persisted session settings,
// $TRACKCOPY_HOME/settings.json.
func SettingsPath() (string, error) {
	home, err := GetTrackcopyHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "settings.json"), nil
}

// HistoryDBPath returns the path of the copy-pass journal,
// $TRACKCOPY_HOME/history/history.db.
func HistoryDBPath() (string, error) {
	home, err := GetTrackcopyHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history", "history.db"), nil
}
