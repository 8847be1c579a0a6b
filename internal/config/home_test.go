package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestGetTrackcopyHomeWithEnvVar tests TRACKCOPY_HOME env var takes precedence
func TestGetTrackcopyHomeWithEnvVar(t *testing.T) {
	customHome := t.TempDir()
	t.Setenv("TRACKCOPY_HOME", customHome)

	home, err := GetTrackcopyHomeFrom(t.TempDir())
	if err != nil {
		t.Fatalf("GetTrackcopyHomeFrom() error = %v", err)
	}

	if home != customHome {
		t.Errorf("GetTrackcopyHomeFrom() = %q, want %q", home, customHome)
	}
}

// TestGetTrackcopyHomeMarkerFile tests the walk-up to a .trackcopy-root marker
func TestGetTrackcopyHomeMarkerFile(t *testing.T) {
	t.Setenv("TRACKCOPY_HOME", "")

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".trackcopy-root"), nil, 0644); err != nil {
		t.Fatalf("failed to write marker: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dirs: %v", err)
	}

	home, err := GetTrackcopyHomeFrom(nested)
	if err != nil {
		t.Fatalf("GetTrackcopyHomeFrom() error = %v", err)
	}

	want := filepath.Join(root, ".trackcopy")
	if home != want {
		t.Errorf("GetTrackcopyHomeFrom() = %q, want %q", home, want)
	}

	info, err := os.Stat(home)
	if err != nil {
		t.Fatalf("home directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("home path is not a directory: %q", home)
	}
}

// TestGetTrackcopyHomeExistingDotDir tests the walk-up to an existing .trackcopy
func TestGetTrackcopyHomeExistingDotDir(t *testing.T) {
	t.Setenv("TRACKCOPY_HOME", "")

	root := t.TempDir()
	existing := filepath.Join(root, ".trackcopy")
	if err := os.MkdirAll(existing, 0755); err != nil {
		t.Fatalf("failed to create .trackcopy: %v", err)
	}
	nested := filepath.Join(root, "sub")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	home, err := GetTrackcopyHomeFrom(nested)
	if err != nil {
		t.Fatalf("GetTrackcopyHomeFrom() error = %v", err)
	}
	if home != existing {
		t.Errorf("GetTrackcopyHomeFrom() = %q, want %q", home, existing)
	}
}

// TestGetTrackcopyHomeFallback tests .trackcopy creation under the start dir
func TestGetTrackcopyHomeFallback(t *testing.T) {
	t.Setenv("TRACKCOPY_HOME", "")

	start := t.TempDir()
	home, err := GetTrackcopyHomeFrom(start)
	if err != nil {
		t.Fatalf("GetTrackcopyHomeFrom() error = %v", err)
	}

	want := filepath.Join(start, ".trackcopy")
	if home != want {
		t.Errorf("GetTrackcopyHomeFrom() = %q, want %q", home, want)
	}
	if _, err := os.Stat(home); os.IsNotExist(err) {
		t.Errorf("directory not created: %q", home)
	}
}

// TestGetTrackcopyHomeEnvVarDoesNotCreate tests the env var path is returned verbatim
func TestGetTrackcopyHomeEnvVarDoesNotCreate(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-created")
	t.Setenv("TRACKCOPY_HOME", missing)

	home, err := GetTrackcopyHomeFrom(t.TempDir())
	if err != nil {
		t.Fatalf("GetTrackcopyHomeFrom() error = %v", err)
	}
	if home != missing {
		t.Errorf("GetTrackcopyHomeFrom() = %q, want %q", home, missing)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("env var path should not be created eagerly: %q", missing)
	}
}

// TestHomeFilePaths tests the derived settings, config and journal paths
func TestHomeFilePaths(t *testing.T) {
	customHome := t.TempDir()
	t.Setenv("TRACKCOPY_HOME", customHome)

	settingsPath, err := SettingsPath()
	if err != nil {
		t.Fatalf("SettingsPath() error = %v", err)
	}
	if want := filepath.Join(customHome, "settings.json"); settingsPath != want {
		t.Errorf("SettingsPath() = %q, want %q", settingsPath, want)
	}

	configPath, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if want := filepath.Join(customHome, "config.yaml"); configPath != want {
		t.Errorf("ConfigPath() = %q, want %q", configPath, want)
	}

	dbPath, err := HistoryDBPath()
	if err != nil {
		t.Fatalf("HistoryDBPath() error = %v", err)
	}
	if want := filepath.Join(customHome, "history", "history.db"); dbPath != want {
		t.Errorf("HistoryDBPath() = %q, want %q", dbPath, want)
	}
}
