package rule

// List cycles through a fixed sequence of values, moving its index forward
// once per step evaluations. The index is never wrapped when it advances;
// reads reduce it modulo the list length, so cycling falls out of the read.
type List struct {
	tag    string
	values []string
	step   int

	index int
	calls int
}

// NewList builds a list rule over a copy of values. An empty list is legal
// and always yields the empty string. A step below 1 is treated as 1.
func NewList(tag string, values []string, step int) *List {
	if step < 1 {
		step = 1
	}
	return &List{
		tag:    tag,
		values: append([]string(nil), values...),
		step:   step,
	}
}

// Tag returns the placeholder name the list binds to.
func (l *List) Tag() string { return l.tag }

// Value returns the entry at the current index, then advances the index if
// this call completes a step. An empty list yields "" and consumes nothing.
func (l *List) Value(_ int) string {
	if len(l.values) == 0 {
		return ""
	}
	v := l.values[l.index%len(l.values)]
	l.calls++
	if l.calls%l.step == 0 {
		l.index++
	}
	return v
}

// Reset returns the list to its construction state.
func (l *List) Reset() {
	l.index = 0
	l.calls = 0
}

// Clone returns an independent copy, values and progress included.
func (l *List) Clone() Rule {
	dup := *l
	dup.values = append([]string(nil), l.values...)
	return &dup
}

// Snapshot returns the serializable form of the list.
func (l *List) Snapshot() Snapshot {
	return Snapshot{
		Kind:   KindList,
		Tag:    l.tag,
		Step:   l.step,
		Values: append([]string(nil), l.values...),
	}
}

func (l *List) setTag(tag string) { l.tag = tag }
