package cmd

import (
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/engine"
)

func TestCommitCommand(t *testing.T) {
	isolateHome(t)

	ctrl := &stubController{
		commitResult: &engine.Result{
			Policy:    engine.PolicyRename,
			Copied:    2,
			Ignored:   1,
			LastFinal: "shot_3.mov",
		},
	}
	addr := newControlServer(t, engine.NewSession(), ctrl)

	output, err := runCommand(t, NewCommitCommand(),
		"--addr", addr, "--policy", "rename", "--allow-missing-tags")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if ctrl.commitPolicy != engine.PolicyRename {
		t.Errorf("expected rename policy to reach the session, got %q", ctrl.commitPolicy)
	}
	if !ctrl.commitMissing {
		t.Error("expected allow-missing-tags to reach the session")
	}
	for _, want := range []string{"Copied: 2", "Ignored: 1", "Vanished: 0", "Last file: shot_3.mov"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestCommitCommandDefaultPolicy(t *testing.T) {
	isolateHome(t)

	ctrl := &stubController{commitResult: &engine.Result{Copied: 1}}
	addr := newControlServer(t, engine.NewSession(), ctrl)

	if _, err := runCommand(t, NewCommitCommand(), "--addr", addr); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if ctrl.commitPolicy != engine.Policy("") {
		t.Errorf("expected no preselected policy, got %q", ctrl.commitPolicy)
	}
	if ctrl.commitMissing {
		t.Error("allow-missing-tags should default to false")
	}
}

func TestCommitCommandInvalidPolicy(t *testing.T) {
	isolateHome(t)

	addr := newControlServer(t, engine.NewSession(), &stubController{})

	_, err := runCommand(t, NewCommitCommand(), "--addr", addr, "--policy", "shred")
	if err == nil {
		t.Fatal("expected an error for an unknown policy")
	}
	if !strings.Contains(err.Error(), "unknown collision policy") {
		t.Errorf("error should name the bad policy, got: %v", err)
	}
}

func TestCommitCommandGuardError(t *testing.T) {
	isolateHome(t)

	ctrl := &stubController{commitErr: engine.ErrNoTrackedFiles}
	addr := newControlServer(t, engine.NewSession(), ctrl)

	_, err := runCommand(t, NewCommitCommand(), "--addr", addr)
	if err == nil {
		t.Fatal("expected the guard error to surface")
	}
	if !strings.Contains(err.Error(), "no tracked files to copy") {
		t.Errorf("error should carry the API's message, got: %v", err)
	}
}
