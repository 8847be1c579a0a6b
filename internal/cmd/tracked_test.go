package cmd

import (
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/engine"
	"github.com/fernwright/trackcopy/internal/settings"
)

// newListingSession builds a session with the default pattern and counter
// rule so tracked files get planned names.
func newListingSession(t *testing.T, tracked ...string) *engine.Session {
	t.Helper()
	session := engine.NewSession()
	if err := session.ApplySettings(settings.Default()); err != nil {
		t.Fatalf("failed to apply settings: %v", err)
	}
	session.ReplaceTracked(tracked)
	return session
}

func TestTrackedCommand(t *testing.T) {
	isolateHome(t)

	session := newListingSession(t, "/ingest/raw/a.mov", "/ingest/raw/b.mov")
	addr := newControlServer(t, session, &stubController{})

	output, err := runCommand(t, NewTrackedCommand(), "--addr", addr)
	if err != nil {
		t.Fatalf("tracked failed: %v", err)
	}

	for _, want := range []string{"Original Name", "a.mov", "b.mov", "file_1.mov", "file_2.mov"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Showing") {
		t.Errorf("full listing should have no footer, got:\n%s", output)
	}
}

func TestTrackedCommandCountFooter(t *testing.T) {
	isolateHome(t)

	session := newListingSession(t,
		"/ingest/raw/a.mov",
		"/ingest/raw/b.mov",
		"/ingest/raw/c.mov",
		"/ingest/raw/d.mov",
		"/ingest/raw/e.mov",
	)
	addr := newControlServer(t, session, &stubController{})

	output, err := runCommand(t, NewTrackedCommand(), "--addr", addr, "--count", "2")
	if err != nil {
		t.Fatalf("tracked failed: %v", err)
	}

	if !strings.Contains(output, "Showing 2 of 5 tracked files") {
		t.Errorf("output should contain the truncation footer, got:\n%s", output)
	}
	// The listing keeps the newest files.
	if !strings.Contains(output, "e.mov") {
		t.Errorf("output should contain the newest file, got:\n%s", output)
	}
	if strings.Contains(output, "a.mov") {
		t.Errorf("output should not contain files beyond the count, got:\n%s", output)
	}
}

func TestTrackedCommandEmpty(t *testing.T) {
	isolateHome(t)

	addr := newControlServer(t, newListingSession(t), &stubController{})

	output, err := runCommand(t, NewTrackedCommand(), "--addr", addr)
	if err != nil {
		t.Fatalf("tracked failed: %v", err)
	}
	if !strings.Contains(output, "No tracked files") {
		t.Errorf("output should report an empty list, got:\n%s", output)
	}
}

func TestTrackedClearCommand(t *testing.T) {
	isolateHome(t)

	session := newListingSession(t, "/ingest/raw/a.mov", "/ingest/raw/b.mov")
	addr := newControlServer(t, session, &stubController{})

	output, err := runCommand(t, NewTrackedCommand(), "clear", "--addr", addr)
	if err != nil {
		t.Fatalf("tracked clear failed: %v", err)
	}
	if !strings.Contains(output, "Tracked files cleared") {
		t.Errorf("output should confirm the clear, got:\n%s", output)
	}
	if n := session.TrackedCount(); n != 0 {
		t.Errorf("expected an empty tracked list, got %d files", n)
	}
}
