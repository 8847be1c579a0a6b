package rule

import "strconv"

// Counter emits an arithmetic sequence: it starts at a configured value and
// advances by increment once per step evaluations. When a bound is set and
// the advanced value passes it, the counter wraps back to the start value.
// Wrapping is a hard reset rather than modulo arithmetic, which matters when
// the increment does not evenly divide the range.
type Counter struct {
	tag       string
	start     int
	increment int
	step      int
	max       *int
	min       *int

	current int
	calls   int
}

// NewCounter builds a counter rule. A step below 1 is treated as 1.
func NewCounter(tag string, start, increment, step int) *Counter {
	if step < 1 {
		step = 1
	}
	return &Counter{
		tag:       tag,
		start:     start,
		increment: increment,
		step:      step,
		current:   start,
	}
}

// SetMax bounds the counter above: an advance that exceeds max wraps the
// counter back to its start value.
func (c *Counter) SetMax(max int) {
	c.max = &max
}

// SetMin bounds the counter below, the mirror of SetMax for negative
// increments: an advance that falls under min wraps back to the start value.
func (c *Counter) SetMin(min int) {
	c.min = &min
}

// Tag returns the placeholder name the counter binds to.
func (c *Counter) Tag() string { return c.tag }

// Value returns the current counter value, then advances it if this call
// completes a step.
func (c *Counter) Value(_ int) string {
	v := c.current
	c.calls++
	if c.calls%c.step == 0 {
		c.current += c.increment
		if c.max != nil && c.current > *c.max {
			c.current = c.start
		}
		if c.min != nil && c.current < *c.min {
			c.current = c.start
		}
	}
	return strconv.Itoa(v)
}

// Reset returns the counter to its construction state.
func (c *Counter) Reset() {
	c.current = c.start
	c.calls = 0
}

// Clone returns an independent copy, bounds and progress included.
func (c *Counter) Clone() Rule {
	dup := *c
	dup.max = copyIntPtr(c.max)
	dup.min = copyIntPtr(c.min)
	return &dup
}

// Snapshot returns the serializable form of the counter.
func (c *Counter) Snapshot() Snapshot {
	return Snapshot{
		Kind:       KindCounter,
		Tag:        c.tag,
		StartValue: c.start,
		Increment:  c.increment,
		Step:       c.step,
		MaxValue:   copyIntPtr(c.max),
		MinValue:   copyIntPtr(c.min),
	}
}

func (c *Counter) setTag(tag string) { c.tag = tag }
