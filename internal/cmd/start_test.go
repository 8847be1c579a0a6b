package cmd

import (
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/engine"
)

func TestStartCommand(t *testing.T) {
	isolateHome(t)

	ctrl := &stubController{}
	addr := newControlServer(t, engine.NewSession(), ctrl)

	output, err := runCommand(t, NewStartCommand(), "--addr", addr)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if ctrl.startCalls != 1 {
		t.Errorf("expected 1 StartTracking call, got %d", ctrl.startCalls)
	}
	if !strings.Contains(output, "Tracking started") {
		t.Errorf("output should confirm the start, got:\n%s", output)
	}
}
