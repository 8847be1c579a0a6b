package rule

import "fmt"

// Snapshot is the structural form of a rule used by settings persistence.
// Kind discriminates the variant. Optional fields are pointers so "absent"
// survives load/save cycles; older settings files may omit step (defaults
// to 1) and the bounds (default to unbounded).
type Snapshot struct {
	Kind         Kind     `json:"kind"`
	Tag          string   `json:"tag"`
	StartValue   int      `json:"start_value,omitempty"`
	Increment    int      `json:"increment,omitempty"`
	Step         int      `json:"step,omitempty"`
	MaxValue     *int     `json:"max_value,omitempty"`
	MinValue     *int     `json:"min_value,omitempty"`
	Values       []string `json:"values,omitempty"`
	CurrentValue *int     `json:"current_value,omitempty"`
	BatchCount   *int     `json:"batch_count,omitempty"`
}

// FromSnapshot reconstructs a rule from its serialized form. A missing or
// invalid step is treated as 1. Batch snapshots restore their saved
// progress when present; otherwise the batch starts fresh.
func FromSnapshot(s Snapshot) (Rule, error) {
	step := s.Step
	if step < 1 {
		step = 1
	}
	switch s.Kind {
	case KindCounter:
		c := NewCounter(s.Tag, s.StartValue, s.Increment, step)
		c.max = copyIntPtr(s.MaxValue)
		c.min = copyIntPtr(s.MinValue)
		return c, nil
	case KindList:
		return NewList(s.Tag, s.Values, step), nil
	case KindBatch:
		b := NewBatch(s.Tag, s.StartValue, s.Increment, step)
		b.max = copyIntPtr(s.MaxValue)
		b.min = copyIntPtr(s.MinValue)
		if s.CurrentValue != nil {
			b.current = *s.CurrentValue
		}
		if s.BatchCount != nil {
			b.batches = *s.BatchCount
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", s.Kind)
	}
}
