package rule

import "strconv"

// Batch is a counter whose value is fixed for every file of one copy pass.
// Evaluation never mutates it; only Advance, called once after a pass
// completes, moves it. Reset is deliberately a no-op so the blanket reset
// that precedes each pass cannot disturb batch progress, and the progress
// is part of its snapshot so it survives process restarts.
type Batch struct {
	tag       string
	start     int
	increment int
	step      int
	max       *int
	min       *int

	current int
	batches int
}

// NewBatch builds a batch rule. A step below 1 is treated as 1.
func NewBatch(tag string, start, increment, step int) *Batch {
	if step < 1 {
		step = 1
	}
	return &Batch{
		tag:       tag,
		start:     start,
		increment: increment,
		step:      step,
		current:   start,
	}
}

// SetMax bounds the batch counter above; exceeding it wraps to the start
// value on advance.
func (b *Batch) SetMax(max int) {
	b.max = &max
}

// SetMin bounds the batch counter below for negative increments; falling
// under it wraps to the start value on advance.
func (b *Batch) SetMin(min int) {
	b.min = &min
}

// Tag returns the placeholder name the batch binds to.
func (b *Batch) Tag() string { return b.tag }

// Value returns the batch value. Evaluation never advances it.
func (b *Batch) Value(_ int) string {
	return strconv.Itoa(b.current)
}

// Advance records one completed pass and, once per step passes, applies the
// increment and wrap bounds.
func (b *Batch) Advance() {
	b.batches++
	if b.batches%b.step == 0 {
		b.current += b.increment
		if b.max != nil && b.current > *b.max {
			b.current = b.start
		}
		if b.min != nil && b.current < *b.min {
			b.current = b.start
		}
	}
}

// Reset is a no-op. Every file of a pass must observe the same value, and
// the value persists between passes until Advance moves it.
func (b *Batch) Reset() {}

// Clone returns an independent copy, bounds and progress included.
func (b *Batch) Clone() Rule {
	dup := *b
	dup.max = copyIntPtr(b.max)
	dup.min = copyIntPtr(b.min)
	return &dup
}

// Snapshot returns the serializable form of the batch, including its
// current value and pass count so restarts resume where they left off.
func (b *Batch) Snapshot() Snapshot {
	cur := b.current
	n := b.batches
	return Snapshot{
		Kind:         KindBatch,
		Tag:          b.tag,
		StartValue:   b.start,
		Increment:    b.increment,
		Step:         b.step,
		MaxValue:     copyIntPtr(b.max),
		MinValue:     copyIntPtr(b.min),
		CurrentValue: &cur,
		BatchCount:   &n,
	}
}

func (b *Batch) setTag(tag string) { b.tag = tag }
