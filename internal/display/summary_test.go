package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fernwright/trackcopy/internal/api"
)

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, &api.StatusResponse{
		IsTracking:        true,
		TrackedFilesCount: 4,
		SourcePath:        "/ingest/raw",
		DestinationPath:   "/ingest/renamed",
		NamePattern:       "shot_{counter}",
	})

	out := buf.String()
	for _, want := range []string{
		"Session Status:",
		"Tracking: active",
		"Tracked files: 4",
		"Source: /ingest/raw",
		"Destination: /ingest/renamed",
		"Pattern: shot_{counter}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteStatusUnsetFields(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, &api.StatusResponse{})

	out := buf.String()
	if !strings.Contains(out, "Tracking: stopped") {
		t.Errorf("stopped session should read as stopped:\n%s", out)
	}
	if strings.Count(out, "(not set)") != 3 {
		t.Errorf("unset source, destination and pattern should all read (not set):\n%s", out)
	}
}

func TestWriteCopySummary(t *testing.T) {
	var buf bytes.Buffer
	WriteCopySummary(&buf, &api.CopyResponse{
		Copied:   3,
		Ignored:  1,
		Vanished: 2,
		LastFile: "shot_3.mov",
	})

	out := buf.String()
	for _, want := range []string{
		"Copy Summary:",
		"Copied: 3",
		"Ignored: 1",
		"Vanished: 2",
		"Last file: shot_3.mov",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("copy summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCopySummaryOmitsEmptyLastFile(t *testing.T) {
	var buf bytes.Buffer
	WriteCopySummary(&buf, &api.CopyResponse{Copied: 1})

	if strings.Contains(buf.String(), "Last file") {
		t.Errorf("empty last file should be omitted:\n%s", buf.String())
	}
}
