// Package engine holds the session state and the naming core: side-effect
// free previews, conflict detection, and the commit pass that copies
// tracked files to the destination under rule-generated names.
package engine

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fernwright/trackcopy/internal/fileops"
	"github.com/fernwright/trackcopy/internal/pattern"
	"github.com/fernwright/trackcopy/internal/rule"
	"github.com/fernwright/trackcopy/internal/settings"
)

// Session is the application context a trackcopy instance works on: source
// and destination paths, format filter, naming pattern, the rule set, and
// the ordered tracked-file list. One mutex guards everything the watcher
// goroutine and the HTTP handlers touch concurrently. Rule values are only
// mutated by the commit pass, which runs on a single goroutine; the mutex
// covers the in-memory mutations and clones so previews stay race free,
// and is never held across file I/O.
type Session struct {
	mu sync.Mutex

	sourcePath    string
	destPath      string
	formatFilter  string
	namingPattern string
	viewMode      string

	rules *rule.Set

	tracked  []string
	tracking bool
	baseline time.Time
}

// NewSession builds an empty session: accept-all filter, no rules, nothing
// tracked.
func NewSession() *Session {
	return &Session{
		formatFilter: "*",
		rules:        &rule.Set{},
	}
}

// Status is the read-only snapshot the status surfaces serve.
type Status struct {
	Tracking     bool
	TrackedCount int
	SourcePath   string
	DestPath     string
	Pattern      string
}

// Status reports the session's current observable state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Tracking:     s.tracking,
		TrackedCount: len(s.tracked),
		SourcePath:   s.sourcePath,
		DestPath:     s.destPath,
		Pattern:      s.namingPattern,
	}
}

// SourcePath returns the tracked source directory.
func (s *Session) SourcePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourcePath
}

// SetSourcePath updates the tracked source directory.
func (s *Session) SetSourcePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourcePath = path
}

// DestPath returns the copy destination directory.
func (s *Session) DestPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destPath
}

// SetDestPath updates the copy destination directory.
func (s *Session) SetDestPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destPath = path
}

// FormatFilter returns the semicolon-separated acceptance filter.
func (s *Session) FormatFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatFilter
}

// SetFormatFilter updates the acceptance filter for discovered files.
func (s *Session) SetFormatFilter(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formatFilter = filter
}

// Pattern returns the naming pattern.
func (s *Session) Pattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namingPattern
}

// SetPattern updates the naming pattern.
func (s *Session) SetPattern(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namingPattern = p
}

// ViewMode returns the persisted display hint. The core never interprets
// it; it exists so settings files round-trip unchanged.
func (s *Session) ViewMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// SetViewMode updates the persisted display hint.
func (s *Session) SetViewMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
}

// StartTracking marks the session as tracking and captures the baseline
// instant; only files modified strictly after it are accepted.
func (s *Session) StartTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking = true
	s.baseline = time.Now()
}

// StopTracking marks the session as not tracking. The tracked list is
// kept; files already collected stay eligible for a commit.
func (s *Session) StopTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking = false
}

// IsTracking reports whether the session currently accepts discoveries.
func (s *Session) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

// Baseline returns the instant tracking last started.
func (s *Session) Baseline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// Discover offers a newly observed file to the session. It is accepted
// only when tracking is active, the name passes the format filter, modTime
// is strictly after the tracking baseline, and the path is not already
// tracked. Rejections are silent by contract; the return value reports
// whether the file was added.
func (s *Session) Discover(path string, modTime time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracking {
		return false
	}
	if !fileops.MatchesFilter(path, s.formatFilter) {
		return false
	}
	if !modTime.After(s.baseline) {
		return false
	}
	for _, p := range s.tracked {
		if p == path {
			return false
		}
	}
	s.tracked = append(s.tracked, path)
	return true
}

// Tracked returns a copy of the tracked paths in list order.
func (s *Session) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tracked...)
}

// TrackedCount reports how many files are tracked.
func (s *Session) TrackedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracked)
}

// RemoveTracked drops one path from the list, preserving the order of the
// rest, and reports whether it was present.
func (s *Session) RemoveTracked(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.tracked {
		if p == path {
			s.tracked = append(s.tracked[:i], s.tracked[i+1:]...)
			return true
		}
	}
	return false
}

// ClearTracked empties the tracked list.
func (s *Session) ClearTracked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = nil
}

// ReplaceTracked swaps the tracked list wholesale. The commit failure path
// uses it to keep only the files a pass did not handle.
func (s *Session) ReplaceTracked(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = append([]string(nil), paths...)
}

// MoveTracked repositions the entry at from to index to, clamped into
// range, and reports whether from was valid. Order matters: it is the
// position fed to the rules.
func (s *Session) MoveTracked(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.tracked) {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s.tracked) {
		to = len(s.tracked) - 1
	}
	p := s.tracked[from]
	s.tracked = append(s.tracked[:from], s.tracked[from+1:]...)
	s.tracked = append(s.tracked[:to], append([]string{p}, s.tracked[to:]...)...)
	return true
}

// CloneRules returns a disposable deep copy of the live rules. Previews
// simulate on such copies so they never block on, or disturb, a running
// commit pass.
func (s *Session) CloneRules() *rule.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Clone()
}

// SetRules replaces the live rule set.
func (s *Session) SetRules(set *rule.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set == nil {
		set = &rule.Set{}
	}
	s.rules = set
}

// resetRules returns transient rule cursors to their start state. Batch
// rules keep their progress; their Reset is a no-op.
func (s *Session) resetRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.ResetAll()
}

// expandPattern advances the live rules one evaluation and returns the
// expanded name for position ordinal. Only the commit pass calls it.
func (s *Session) expandPattern(patternStr string, ordinal int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pattern.Expand(patternStr, s.rules, ordinal)
}

// advanceBatchRules moves every batch rule exactly once, after a pass
// completes.
func (s *Session) advanceBatchRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.AdvanceBatches()
}

// PlanNames forecasts the final destination names, extension included, the
// given files would receive if a commit pass started now.
func (s *Session) PlanNames(files []string) []string {
	names := expandSequence(s.Pattern(), s.CloneRules(), len(files))
	for i := range names {
		names[i] += filepath.Ext(files[i])
	}
	return names
}

// TrackedFile is one row of the tracked-file listing: the stored path, the
// forecast destination name, and the conflict classification.
type TrackedFile struct {
	Path         string
	OriginalName string
	NewName      string
	State        FileState
}

// TrackedListing builds listing rows for the last count tracked files (the
// most recently discovered); count <= 0 returns every file. States come
// from conflict detection over the full list, so a duplicate is flagged
// even when its twin falls outside the returned window. destNames may be
// nil when the destination is unreadable; only duplicate detection applies
// then.
func (s *Session) TrackedListing(destNames map[string]bool, count int) []TrackedFile {
	files := s.Tracked()
	names := s.PlanNames(files)
	report := Detect(names, destNames)

	start := 0
	if count > 0 && len(files) > count {
		start = len(files) - count
	}
	rows := make([]TrackedFile, 0, len(files)-start)
	for i := start; i < len(files); i++ {
		rows = append(rows, TrackedFile{
			Path:         files[i],
			OriginalName: filepath.Base(files[i]),
			NewName:      names[i],
			State:        report.State(i),
		})
	}
	return rows
}

// ApplySettings loads persisted configuration into the session, replacing
// paths, filter, pattern, view mode, and rules. The tracked list is left
// alone. A settings document carrying duplicate rule tags is rejected
// without touching the session.
func (s *Session) ApplySettings(st *settings.Settings) error {
	set, err := st.RuleSet()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourcePath = st.SourcePath
	s.destPath = st.DestPath
	s.formatFilter = st.FormatFilter
	s.namingPattern = st.NamingPattern
	s.viewMode = st.ViewMode
	s.rules = set
	return nil
}

// SettingsSnapshot captures the session's persistent fields, including
// current rule snapshots so batch progress survives restarts.
func (s *Session) SettingsSnapshot() *settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &settings.Settings{
		SourcePath:    s.sourcePath,
		DestPath:      s.destPath,
		FormatFilter:  s.formatFilter,
		NamingPattern: s.namingPattern,
		ViewMode:      s.viewMode,
		Rules:         s.rules.Snapshots(),
	}
}
