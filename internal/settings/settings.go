// Package settings persists the user-facing session configuration, rules
// included, as a JSON document. Writes go through the file lock so the
// watch daemon and one-shot commands never clobber each other.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fernwright/trackcopy/internal/filelock"
	"github.com/fernwright/trackcopy/internal/rule"
)

// Settings is the persistent session configuration. Field names match the
// on-disk JSON; unknown keys in older files are ignored, missing keys keep
// their defaults.
type Settings struct {
	SourcePath    string          `json:"source_path"`
	DestPath      string          `json:"dest_path"`
	FormatFilter  string          `json:"format_filter"`
	NamingPattern string          `json:"naming_pattern"`
	ViewMode      string          `json:"view_mode"`
	Rules         []rule.Snapshot `json:"rules"`
}

// Default returns the out-of-the-box configuration: accept every file,
// name copies file_1, file_2, ... via a single counter rule.
func Default() *Settings {
	return &Settings{
		FormatFilter:  "*",
		NamingPattern: "file_{counter}",
		ViewMode:      "list",
		Rules: []rule.Snapshot{
			{Kind: rule.KindCounter, Tag: "counter", StartValue: 1, Increment: 1, Step: 1},
		},
	}
}

// Load reads the settings file at path. A missing file is not an error;
// defaults are returned so first runs work without setup. The document is
// unmarshalled over the defaults, so partial files from older versions
// load cleanly.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to path atomically under the settings lock.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// RuleSet materializes the saved rule snapshots, in order, enforcing tag
// uniqueness.
func (s *Settings) RuleSet() (*rule.Set, error) {
	return rule.SetFromSnapshots(s.Rules)
}

// SetRuleSet replaces the saved snapshots with the live state of set.
func (s *Settings) SetRuleSet(set *rule.Set) {
	s.Rules = set.Snapshots()
}
