// Package pattern expands {tag} placeholders in naming patterns against a
// rule set. Tags are opaque strings matched literally; there is no nesting
// or escaping.
package pattern

import (
	"regexp"
	"strings"

	"github.com/fernwright/trackcopy/internal/rule"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Expand resolves placeholders in pattern against set, in set order. A rule
// is consulted, advancing its state, only when its tag occurs in the
// pattern; all occurrences of that tag receive the same value within one
// call. Placeholders with no bound rule are left verbatim.
func Expand(pattern string, set *rule.Set, ordinal int) string {
	out := pattern
	for _, r := range set.Rules() {
		placeholder := "{" + r.Tag() + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, r.Value(ordinal))
	}
	return out
}

// Tags returns the placeholder names in pattern, first-appearance order,
// without repeats.
func Tags(pattern string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(pattern, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		tags = append(tags, m[1])
	}
	return tags
}

// MissingTags returns the placeholders in pattern that no rule in set is
// bound to. Unresolved tags are a warning for the user, never an error.
func MissingTags(pattern string, set *rule.Set) []string {
	var missing []string
	for _, tag := range Tags(pattern) {
		if _, ok := set.Find(tag); !ok {
			missing = append(missing, tag)
		}
	}
	return missing
}
