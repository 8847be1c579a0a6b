package engine

import (
	"path/filepath"

	"github.com/fernwright/trackcopy/internal/pattern"
	"github.com/fernwright/trackcopy/internal/rule"
)

// Previews replay the naming sequence on a disposable rule clone. With
// stepped counters the value at position n depends on every evaluation
// before it, so there is no closed form; the clone is reset and advanced
// n+1 times, exactly as a commit pass would advance the live rules.

// expandSequence resets sim and expands patternStr n times, returning the
// names in order. The caller owns sim; live rules are never touched.
func expandSequence(patternStr string, sim *rule.Set, n int) []string {
	sim.ResetAll()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = pattern.Expand(patternStr, sim, i)
	}
	return names
}

// PreviewAt returns the name the file at position index (0-based) would
// receive, without mutating set.
func PreviewAt(patternStr string, set *rule.Set, index int) string {
	if index < 0 {
		return ""
	}
	names := expandSequence(patternStr, set.Clone(), index+1)
	return names[index]
}

// PreviewAll returns the first n names the pattern would produce, without
// mutating set.
func PreviewAll(patternStr string, set *rule.Set, n int) []string {
	if n <= 0 {
		return nil
	}
	return expandSequence(patternStr, set.Clone(), n)
}

// PreviewNames forecasts full destination names for the given source
// files, each expanded name carrying its source file's extension.
func PreviewNames(patternStr string, set *rule.Set, files []string) []string {
	names := expandSequence(patternStr, set.Clone(), len(files))
	for i := range names {
		names[i] += filepath.Ext(files[i])
	}
	return names
}
