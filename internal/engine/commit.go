package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fernwright/trackcopy/internal/fileops"
	"github.com/fernwright/trackcopy/internal/logger"
	"github.com/fernwright/trackcopy/internal/pattern"
)

// Policy decides what happens to a file whose planned name already exists
// in the destination.
type Policy string

const (
	// PolicyOverwrite replaces the existing destination file.
	PolicyOverwrite Policy = "overwrite"
	// PolicyRename keeps both by appending _N before the extension.
	PolicyRename Policy = "rename"
	// PolicyIgnore skips the colliding file; it stays tracked only in
	// the sense that it was handled, see Outcome accounting.
	PolicyIgnore Policy = "ignore"
	// PolicyCancel aborts the pass before any file is touched.
	PolicyCancel Policy = "cancel"
)

// ParsePolicy normalizes a user-supplied policy string. The empty string
// is valid and means "no preselected choice"; the prompter decides.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyOverwrite, PolicyRename, PolicyIgnore, PolicyCancel:
		return p, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}

// Phase is the externally observable stage of the commit controller.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseValidating     Phase = "validating"
	PhaseAwaitingPolicy Phase = "awaiting_policy"
	PhaseCommitting     Phase = "committing"
)

// Prompter answers the two interactive questions a commit pass can raise.
// The CLI implements it over stdin; the HTTP API supplies a StaticPrompter
// preloaded from request fields.
type Prompter interface {
	// ConfirmMissingTags reports whether to proceed although the pattern
	// references tags no rule provides (they expand as literal text).
	ConfirmMissingTags(tags []string) bool
	// ChoosePolicy picks the collision policy for the listed existing
	// names. Returning PolicyCancel or "" aborts the pass.
	ChoosePolicy(existing []string) Policy
}

// StaticPrompter answers without interaction, from preset values.
type StaticPrompter struct {
	AllowMissingTags bool
	Policy           Policy
}

func (p StaticPrompter) ConfirmMissingTags(tags []string) bool { return p.AllowMissingTags }

func (p StaticPrompter) ChoosePolicy(existing []string) Policy { return p.Policy }

// Copier performs the single-file copy. It exists so tests can substitute
// failing or recording implementations.
type Copier interface {
	Copy(src, dst string) error
}

// Outcome is what happened to one tracked file during a pass.
type Outcome string

const (
	OutcomeCopied   Outcome = "copied"
	OutcomeIgnored  Outcome = "ignored"
	OutcomeVanished Outcome = "vanished"
	OutcomeFailed   Outcome = "failed"
)

// FileResult records the fate of one tracked file.
type FileResult struct {
	SourcePath string
	FinalName  string
	Outcome    Outcome
}

// Result summarizes a commit pass. On error it holds the partial progress
// made before the failure.
type Result struct {
	Policy       Policy
	Copied       int
	Ignored      int
	Vanished     int
	Files        []FileResult
	LastOriginal string
	LastFinal    string
}

// Committer runs commit passes against a session. At most one pass runs
// at a time; concurrent calls fail fast with ErrCommitInFlight.
type Committer struct {
	session *Session
	copier  Copier
	log     logger.Logger

	mu    sync.Mutex
	phase Phase
}

// NewCommitter wires a committer to its session. A nil copier defaults to
// the real file copier, a nil log discards messages.
func NewCommitter(session *Session, copier Copier, log logger.Logger) *Committer {
	if copier == nil {
		copier = fileops.Copier{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Committer{
		session: session,
		copier:  copier,
		log:     log,
		phase:   PhaseIdle,
	}
}

// Phase reports the current stage of the controller.
func (c *Committer) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// begin claims the controller for one pass.
func (c *Committer) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrCommitInFlight
	}
	c.phase = PhaseValidating
	return nil
}

func (c *Committer) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Commit runs one full pass: validate, detect conflicts, resolve the
// collision policy, then copy every tracked file under its generated name.
// On success the tracked list is cleared and batch rules advance once. On
// failure the files not yet copied, the failed one included, stay tracked
// and batch rules do not advance; the returned Result still reports the
// partial progress. Consumed counter and list evaluations are not rolled
// back on failure, matching what a preview after the failure shows.
func (c *Committer) Commit(ctx context.Context, prompt Prompter) (*Result, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.setPhase(PhaseIdle)

	files := c.session.Tracked()
	if len(files) == 0 {
		return nil, ErrNoTrackedFiles
	}

	dest := c.session.DestPath()
	if dest == "" {
		return nil, ErrNoDestination
	}
	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoDestination, dest)
	}

	patternStr := c.session.Pattern()
	if missing := pattern.MissingTags(patternStr, c.session.CloneRules()); len(missing) > 0 {
		if !prompt.ConfirmMissingTags(missing) {
			return nil, fmt.Errorf("%w: pattern references unknown tags %s",
				ErrCommitCancelled, strings.Join(missing, ", "))
		}
		c.log.LogWarn(fmt.Sprintf("pattern tags without rules kept as literals: %s",
			strings.Join(missing, ", ")))
	}

	destNames, err := fileops.ListNames(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDestination, err)
	}

	planned := c.session.PlanNames(files)
	report := Detect(planned, destNames)
	if report.HasBlocking() {
		names := make([]string, 0, len(report.DuplicateIndices()))
		for _, i := range report.DuplicateIndices() {
			names = append(names, planned[i])
		}
		return nil, fmt.Errorf("%w: %s", ErrBlockingConflicts, strings.Join(dedupe(names), ", "))
	}

	policy := PolicyOverwrite
	if report.HasCollisions() {
		c.setPhase(PhaseAwaitingPolicy)
		existing := make([]string, 0, len(report.CollisionIndices()))
		for _, i := range report.CollisionIndices() {
			existing = append(existing, planned[i])
		}
		choice := prompt.ChoosePolicy(existing)
		switch choice {
		case PolicyOverwrite, PolicyRename, PolicyIgnore:
			policy = choice
		case PolicyCancel, "":
			return nil, fmt.Errorf("%w: %d names already exist in destination",
				ErrCommitCancelled, len(existing))
		default:
			return nil, fmt.Errorf("unknown collision policy %q", choice)
		}
	}

	c.setPhase(PhaseCommitting)
	c.log.LogInfo(fmt.Sprintf("copying %d files to %s", len(files), dest))

	plannedSet := make(map[string]bool, len(planned))
	for _, n := range planned {
		plannedSet[n] = true
	}
	claimed := make(map[string]bool, len(files))
	res := &Result{Policy: policy}

	c.session.resetRules()
	for i, src := range files {
		if err := ctx.Err(); err != nil {
			c.retainFrom(files, i)
			return res, fmt.Errorf("copy pass interrupted: %w", err)
		}

		// Expand before stating the source so a vanished file still
		// consumes its rule evaluation and later names stay as
		// previewed.
		final := c.session.expandPattern(patternStr, i) + filepath.Ext(src)

		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				res.Vanished++
				res.Files = append(res.Files, FileResult{SourcePath: src, Outcome: OutcomeVanished})
				c.log.LogWarn(fmt.Sprintf("tracked file vanished, skipping: %s", src))
				continue
			}
			res.Files = append(res.Files, FileResult{SourcePath: src, Outcome: OutcomeFailed})
			c.retainFrom(files, i)
			return res, fmt.Errorf("stat %s: %w", src, err)
		}

		if destNames[final] || claimed[final] {
			switch policy {
			case PolicyIgnore:
				res.Ignored++
				res.Files = append(res.Files, FileResult{SourcePath: src, FinalName: final, Outcome: OutcomeIgnored})
				c.log.LogInfo(fmt.Sprintf("skipping %s, %s already exists", filepath.Base(src), final))
				continue
			case PolicyRename:
				final = suffixed(final, destNames, claimed, plannedSet)
			}
		}

		if err := c.copier.Copy(src, filepath.Join(dest, final)); err != nil {
			res.Files = append(res.Files, FileResult{SourcePath: src, FinalName: final, Outcome: OutcomeFailed})
			c.retainFrom(files, i)
			return res, fmt.Errorf("copy %s: %w", src, err)
		}

		claimed[final] = true
		res.Copied++
		res.LastOriginal = filepath.Base(src)
		res.LastFinal = final
		res.Files = append(res.Files, FileResult{SourcePath: src, FinalName: final, Outcome: OutcomeCopied})
		c.log.LogInfo(fmt.Sprintf("copied %s -> %s", filepath.Base(src), final))
	}

	c.session.advanceBatchRules()
	c.session.ClearTracked()
	c.log.LogInfo(fmt.Sprintf("copy pass complete: %d copied, %d ignored, %d vanished",
		res.Copied, res.Ignored, res.Vanished))
	return res, nil
}

// retainFrom keeps the unhandled tail of the pass tracked so a later
// commit can retry it.
func (c *Committer) retainFrom(files []string, i int) {
	c.session.ReplaceTracked(files[i:])
}

// suffixed finds the smallest _N variant of name that is free in the
// destination, not claimed earlier in this pass, and not planned for a
// later file of this pass.
func suffixed(name string, dest, claimed, planned map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !dest[candidate] && !claimed[candidate] && !planned[candidate] {
			return candidate
		}
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
