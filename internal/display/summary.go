package display

import (
	"fmt"
	"io"

	"github.com/fernwright/trackcopy/internal/api"
)

// WriteStatus prints the session summary block.
func WriteStatus(w io.Writer, st *api.StatusResponse) {
	tracking := "stopped"
	if st.IsTracking {
		tracking = "active"
	}

	fmt.Fprintf(w, "Session Status:\n")
	fmt.Fprintf(w, "  Tracking: %s\n", tracking)
	fmt.Fprintf(w, "  Tracked files: %d\n", st.TrackedFilesCount)
	fmt.Fprintf(w, "  Source: %s\n", orUnset(st.SourcePath))
	fmt.Fprintf(w, "  Destination: %s\n", orUnset(st.DestinationPath))
	fmt.Fprintf(w, "  Pattern: %s\n", orUnset(st.NamePattern))
}

// WriteCopySummary prints the result block of a copy pass.
func WriteCopySummary(w io.Writer, res *api.CopyResponse) {
	fmt.Fprintf(w, "Copy Summary:\n")
	fmt.Fprintf(w, "  Copied: %d\n", res.Copied)
	fmt.Fprintf(w, "  Ignored: %d\n", res.Ignored)
	fmt.Fprintf(w, "  Vanished: %d\n", res.Vanished)
	if res.LastFile != "" {
		fmt.Fprintf(w, "  Last file: %s\n", res.LastFile)
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
