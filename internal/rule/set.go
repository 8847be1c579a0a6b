package rule

import "fmt"

// Set is an ordered collection of rules with unique tags. Insertion order
// is the evaluation and display order and is preserved through snapshots.
type Set struct {
	rules []Rule
}

// NewSet builds a set from the given rules, rejecting duplicate tags.
func NewSet(rules ...Rule) (*Set, error) {
	s := &Set{}
	for _, r := range rules {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a rule, rejecting a tag already present in the set.
func (s *Set) Add(r Rule) error {
	if _, ok := s.Find(r.Tag()); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTag, r.Tag())
	}
	s.rules = append(s.rules, r)
	return nil
}

// Remove deletes the rule bound to tag, preserving the order of the rest.
func (s *Set) Remove(tag string) error {
	for i, r := range s.rules {
		if r.Tag() == tag {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

// Rename rebinds a rule to a new tag. If the new tag is already taken the
// update is rejected and the set is left untouched.
func (s *Set) Rename(oldTag, newTag string) error {
	r, ok := s.Find(oldTag)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTag, oldTag)
	}
	if oldTag == newTag {
		return nil
	}
	if _, taken := s.Find(newTag); taken {
		return fmt.Errorf("%w: %q", ErrDuplicateTag, newTag)
	}
	r.setTag(newTag)
	return nil
}

// Move repositions the rule bound to tag at index, clamped into range.
func (s *Set) Move(tag string, index int) error {
	from := -1
	for i, r := range s.rules {
		if r.Tag() == tag {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.rules) {
		index = len(s.rules) - 1
	}
	r := s.rules[from]
	s.rules = append(s.rules[:from], s.rules[from+1:]...)
	s.rules = append(s.rules[:index], append([]Rule{r}, s.rules[index:]...)...)
	return nil
}

// Find returns the rule bound to tag.
func (s *Set) Find(tag string) (Rule, bool) {
	for _, r := range s.rules {
		if r.Tag() == tag {
			return r, true
		}
	}
	return nil, false
}

// Rules returns the rules in set order. The slice is a copy; the rules are
// the live instances.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Len reports the number of rules in the set.
func (s *Set) Len() int { return len(s.rules) }

// Clone returns a deep copy of the set: independent rules, same order.
func (s *Set) Clone() *Set {
	dup := &Set{rules: make([]Rule, len(s.rules))}
	for i, r := range s.rules {
		dup.rules[i] = r.Clone()
	}
	return dup
}

// ResetAll resets every rule. Batch rules keep their progress (their Reset
// is a no-op), which is exactly the asymmetry a pre-pass reset relies on.
func (s *Set) ResetAll() {
	for _, r := range s.rules {
		r.Reset()
	}
}

// AdvanceBatches advances every batch rule exactly once. Called after a
// copy pass completes; other variants are untouched.
func (s *Set) AdvanceBatches() {
	for _, r := range s.rules {
		if b, ok := r.(*Batch); ok {
			b.Advance()
		}
	}
}

// Snapshots returns the serializable forms of all rules in set order.
func (s *Set) Snapshots() []Snapshot {
	snaps := make([]Snapshot, len(s.rules))
	for i, r := range s.rules {
		snaps[i] = r.Snapshot()
	}
	return snaps
}

// SetFromSnapshots rebuilds a set from serialized rules, preserving order
// and enforcing tag uniqueness.
func SetFromSnapshots(snaps []Snapshot) (*Set, error) {
	s := &Set{}
	for _, snap := range snaps {
		r, err := FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}
