package rule

import (
	"strings"
	"testing"
)

func valueSequence(r Rule, n int) string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = r.Value(i)
	}
	return strings.Join(out, ",")
}

func TestCounterSequences(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Counter
		want  string
	}{
		{
			name: "wraps past max back to start",
			build: func() *Counter {
				c := NewCounter("n", 0, 3, 1)
				c.SetMax(7)
				return c
			},
			want: "0,3,6,0,3,6",
		},
		{
			name:  "step gates advancement",
			build: func() *Counter { return NewCounter("n", 0, 1, 3) },
			want:  "0,0,0,1,1,1",
		},
		{
			name:  "unbounded growth",
			build: func() *Counter { return NewCounter("n", 5, 5, 1) },
			want:  "5,10,15,20,25,30",
		},
		{
			name:  "negative increment without bound",
			build: func() *Counter { return NewCounter("n", 2, -1, 1) },
			want:  "2,1,0,-1,-2,-3",
		},
		{
			name: "negative increment wraps under min",
			build: func() *Counter {
				c := NewCounter("n", 9, -3, 1)
				c.SetMin(4)
				return c
			},
			want: "9,6,9,6,9,6",
		},
		{
			name: "max combined with step",
			build: func() *Counter {
				c := NewCounter("n", 1, 1, 2)
				c.SetMax(2)
				return c
			},
			want: "1,1,2,2,1,1",
		},
		{
			name:  "step below one treated as one",
			build: func() *Counter { return NewCounter("n", 0, 1, 0) },
			want:  "0,1,2,3,4,5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valueSequence(tt.build(), 6)
			if got != tt.want {
				t.Errorf("expected sequence %s, got %s", tt.want, got)
			}
		})
	}
}

func TestListSequences(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		step   int
		want   string
	}{
		{
			name:   "cycles in order",
			values: []string{"a", "b", "c"},
			step:   1,
			want:   "a,b,c,a,b,c",
		},
		{
			name:   "step repeats each entry",
			values: []string{"a", "b"},
			step:   2,
			want:   "a,a,b,b,a,a",
		},
		{
			name:   "single value",
			values: []string{"x"},
			step:   1,
			want:   "x,x,x,x,x,x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valueSequence(NewList("l", tt.values, tt.step), 6)
			if got != tt.want {
				t.Errorf("expected sequence %s, got %s", tt.want, got)
			}
		})
	}
}

func TestListEmptyAlwaysBlank(t *testing.T) {
	l := NewList("l", nil, 1)
	for i := 0; i < 4; i++ {
		if got := l.Value(i); got != "" {
			t.Errorf("call %d: expected empty value, got %q", i, got)
		}
	}
}

func TestBatchValueStableAcrossEvaluations(t *testing.T) {
	b := NewBatch("b", 10, 5, 1)
	for i := 0; i < 5; i++ {
		if got := b.Value(i); got != "10" {
			t.Errorf("call %d: expected 10, got %s", i, got)
		}
	}
	b.Advance()
	if got := b.Value(0); got != "15" {
		t.Errorf("expected 15 after advance, got %s", got)
	}
}

func TestBatchAdvanceStepAndWrap(t *testing.T) {
	b := NewBatch("b", 0, 2, 2)
	b.SetMax(3)

	// Step 2 means every other advance moves the value; exceeding max wraps.
	want := []string{"0", "2", "2", "0"}
	for i, expected := range want {
		b.Advance()
		if got := b.Value(0); got != expected {
			t.Errorf("after advance %d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestResetAsymmetry(t *testing.T) {
	c := NewCounter("c", 0, 1, 1)
	l := NewList("l", []string{"a", "b"}, 1)
	b := NewBatch("b", 0, 1, 1)

	for i := 0; i < 3; i++ {
		c.Value(i)
		l.Value(i)
	}
	b.Advance()
	b.Advance()

	c.Reset()
	l.Reset()
	b.Reset()

	if got := c.Value(0); got != "0" {
		t.Errorf("counter after reset: expected 0, got %s", got)
	}
	if got := l.Value(0); got != "a" {
		t.Errorf("list after reset: expected a, got %s", got)
	}
	if got := b.Value(0); got != "2" {
		t.Errorf("batch after reset: expected progress kept at 2, got %s", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	c := NewCounter("c", 0, 1, 1)
	c.Value(0)

	dup := c.Clone()
	dup.Value(0)
	dup.Value(1)

	if got := c.Value(1); got != "1" {
		t.Errorf("original should be unaffected by clone calls: expected 1, got %s", got)
	}
	if got := dup.Value(2); got != "3" {
		t.Errorf("clone should carry its own progress: expected 3, got %s", got)
	}
}
