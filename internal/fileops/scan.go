package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ListNames returns the entry names present in dir as a lookup set. Both
// files and directories count: copying onto either is a collision.
func ListNames(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination: %w", err)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

// Scan lists the files directly under dir that pass the format filter and
// were modified after newerThan (a zero time accepts any age). Results are
// ordered oldest first, name as tie break, which approximates the order a
// tracking session would have discovered them in.
func Scan(dir, filter string, newerThan time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !MatchesFilter(e.Name(), filter) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// The entry vanished mid-scan; skip it.
			continue
		}
		if !newerThan.IsZero() && !info.ModTime().After(newerThan) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		found = append(found, candidate{path: abs, mod: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].mod.Equal(found[j].mod) {
			return found[i].path < found[j].path
		}
		return found[i].mod.Before(found[j].mod)
	})

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}
