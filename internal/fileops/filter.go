package fileops

import (
	"path/filepath"
	"strings"
)

// MatchesFilter reports whether a file passes a semicolon-separated format
// filter. Each entry is either "*" (accept everything), a glob matched
// against the base name (entries containing metacharacters), or a bare
// extension with or without the leading dot, compared case-insensitively.
// An empty filter accepts everything; the path may be absolute, only its
// base name is inspected.
func MatchesFilter(path, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "*" {
		return true
	}

	base := filepath.Base(path)
	for _, entry := range strings.Split(filter, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "*" {
			return true
		}
		if strings.ContainsAny(entry, "*?[") {
			if ok, err := filepath.Match(entry, base); err == nil && ok {
				return true
			}
			continue
		}
		ext := entry
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.EqualFold(filepath.Ext(base), ext) {
			return true
		}
	}
	return false
}
