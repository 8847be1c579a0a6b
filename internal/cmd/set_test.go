package cmd

import (
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/engine"
)

func TestSetCommands(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOutput string
		check      func(*engine.Session) string
	}{
		{
			name:       "source",
			args:       []string{"source", "/ingest/raw"},
			wantOutput: "Source directory set to /ingest/raw",
			check:      func(s *engine.Session) string { return s.SourcePath() },
		},
		{
			name:       "dest",
			args:       []string{"dest", "/archive/renamed"},
			wantOutput: "Destination directory set to /archive/renamed",
			check:      func(s *engine.Session) string { return s.DestPath() },
		},
		{
			name:       "pattern",
			args:       []string{"pattern", "shot_{counter}_{side}"},
			wantOutput: "Name pattern set to shot_{counter}_{side}",
			check:      func(s *engine.Session) string { return s.Pattern() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateHome(t)

			session := engine.NewSession()
			addr := newControlServer(t, session, &stubController{})

			args := append(tt.args, "--addr", addr)
			output, err := runCommand(t, NewSetCommand(), args...)
			if err != nil {
				t.Fatalf("set %s failed: %v", tt.name, err)
			}
			if !strings.Contains(output, tt.wantOutput) {
				t.Errorf("output should contain %q, got:\n%s", tt.wantOutput, output)
			}
			if got := tt.check(session); got != tt.args[1] {
				t.Errorf("session should hold %q, got %q", tt.args[1], got)
			}
		})
	}
}

func TestSetCommandRequiresValue(t *testing.T) {
	isolateHome(t)

	_, err := runCommand(t, NewSetCommand(), "source")
	if err == nil {
		t.Fatal("expected an error for a missing argument")
	}
}
