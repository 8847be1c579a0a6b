// Package fileops implements the file-system collaborators the naming
// engine stays decoupled from: the per-file copy, destination listings for
// collision checks, and source-directory scans honoring the format filter.
package fileops

import (
	"fmt"
	"io"
	"os"
)

// Copy copies the file at src to dst, truncating dst if it already exists
// (which is what the overwrite policy relies on). The destination receives
// the source's permission bits and modification time. Copies are
// per-file; a failure leaves earlier copies in place and no rollback is
// attempted.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy contents: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination: %w", err)
	}

	// Timestamps carry over where the filesystem allows it.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	return nil
}

// Copier adapts Copy to the interface the commit pass consumes, so tests
// can substitute failing or recording copiers.
type Copier struct{}

// Copy copies src to dst. See the package-level Copy.
func (Copier) Copy(src, dst string) error {
	return Copy(src, dst)
}
