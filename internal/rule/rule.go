// Package rule implements the stateful value generators behind naming
// pattern tags. Each rule yields one string per evaluation; Counter and
// List advance an internal cursor as they are consumed, while Batch holds
// a single value for a whole copy pass and only moves when the pass
// completes.
package rule

import "errors"

// Kind discriminates rule variants in serialized form.
type Kind string

const (
	KindCounter Kind = "counter"
	KindList    Kind = "list"
	KindBatch   Kind = "batch"
)

var (
	// ErrDuplicateTag is returned when an operation would leave two rules
	// sharing a tag in the same set.
	ErrDuplicateTag = errors.New("duplicate rule tag")
	// ErrUnknownTag is returned when a tag is not present in the set.
	ErrUnknownTag = errors.New("unknown rule tag")
)

// Rule generates the value for one `{tag}` placeholder evaluation.
//
// Value returns the string for the current position, then conditionally
// advances internal state: the cursor moves once per Step consecutive
// calls. The ordinal is the zero-based position of the evaluation within a
// pass; variants track their own call counts, so it is informational.
//
// Reset returns transient cursors to construction state. Batch rules keep
// their progress across Reset, which is what lets a blanket reset run
// before every commit pass without disturbing them.
type Rule interface {
	// Tag is the placeholder name this rule binds to, unique within a Set.
	Tag() string
	// Value returns the value for this evaluation, before any advance.
	Value(ordinal int) string
	// Reset restores construction-time cursor state (no-op for Batch).
	Reset()
	// Clone returns an independent deep copy, current progress included.
	Clone() Rule
	// Snapshot returns the serializable structural form of the rule.
	Snapshot() Snapshot

	setTag(tag string)
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
