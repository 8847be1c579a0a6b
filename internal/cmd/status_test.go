package cmd

import (
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/engine"
)

func TestStatusCommand(t *testing.T) {
	isolateHome(t)

	session := engine.NewSession()
	session.SetSourcePath("/ingest/raw")
	session.SetDestPath("/archive/renamed")
	session.SetPattern("shot_{counter}")
	session.StartTracking()
	session.ReplaceTracked([]string{"/ingest/raw/a.mov", "/ingest/raw/b.mov"})

	addr := newControlServer(t, session, &stubController{})

	output, err := runCommand(t, NewStatusCommand(), "--addr", addr)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	for _, want := range []string{
		"Tracking: active",
		"Tracked files: 2",
		"Source: /ingest/raw",
		"Destination: /archive/renamed",
		"Pattern: shot_{counter}",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestStatusCommandStopped(t *testing.T) {
	isolateHome(t)

	addr := newControlServer(t, engine.NewSession(), &stubController{})

	output, err := runCommand(t, NewStatusCommand(), "--addr", addr)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(output, "Tracking: stopped") {
		t.Errorf("output should report stopped tracking, got:\n%s", output)
	}
	if !strings.Contains(output, "(not set)") {
		t.Errorf("output should mark unset paths, got:\n%s", output)
	}
}

func TestStatusCommandUnreachable(t *testing.T) {
	isolateHome(t)

	// Port 1 is never serving the control API.
	_, err := runCommand(t, NewStatusCommand(), "--addr", "127.0.0.1:1")
	if err == nil {
		t.Fatal("expected an error when no session is running")
	}
	if !strings.Contains(err.Error(), "contact control API") {
		t.Errorf("error should mention the control API, got: %v", err)
	}
}
