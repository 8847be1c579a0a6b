package engine

import "sort"

// FileState classifies a planned destination name.
type FileState string

const (
	// StateNormal means the name collides with nothing.
	StateNormal FileState = "normal"
	// StateDuplicate means two or more files in the same pass plan the
	// same name. Blocking: committing would overwrite within the batch.
	StateDuplicate FileState = "duplicate"
	// StateExists means the name is already taken in the destination.
	// Non-blocking: the policy choice decides what happens.
	StateExists FileState = "exists"
)

// Report holds the conflicts found for one planned naming pass, keyed by
// position in the planned-name slice.
type Report struct {
	duplicates map[int]bool
	collisions map[int]bool
}

// IntraBatchDuplicates flags every position whose planned name appears
// more than once in names. All holders of a repeated name are flagged,
// first occurrence included.
func IntraBatchDuplicates(names []string) map[int]bool {
	seen := make(map[string]int, len(names))
	for _, n := range names {
		seen[n]++
	}
	dup := make(map[int]bool)
	for i, n := range names {
		if seen[n] > 1 {
			dup[i] = true
		}
	}
	return dup
}

// DestinationCollisions flags every position whose planned name is already
// present in destNames.
func DestinationCollisions(names []string, destNames map[string]bool) map[int]bool {
	col := make(map[int]bool)
	for i, n := range names {
		if destNames[n] {
			col[i] = true
		}
	}
	return col
}

// Detect runs both checks over one planned pass. destNames may be nil.
func Detect(names []string, destNames map[string]bool) *Report {
	return &Report{
		duplicates: IntraBatchDuplicates(names),
		collisions: DestinationCollisions(names, destNames),
	}
}

// HasBlocking reports whether any intra-batch duplicate exists. A pass
// with blocking conflicts must not commit.
func (r *Report) HasBlocking() bool {
	return len(r.duplicates) > 0
}

// HasCollisions reports whether any planned name already exists in the
// destination.
func (r *Report) HasCollisions() bool {
	return len(r.collisions) > 0
}

// State classifies position i. Duplicate outranks exists when both apply.
func (r *Report) State(i int) FileState {
	switch {
	case r.duplicates[i]:
		return StateDuplicate
	case r.collisions[i]:
		return StateExists
	default:
		return StateNormal
	}
}

// DuplicateIndices returns the blocked positions in ascending order.
func (r *Report) DuplicateIndices() []int {
	return sortedKeys(r.duplicates)
}

// CollisionIndices returns the colliding positions in ascending order.
func (r *Report) CollisionIndices() []int {
	return sortedKeys(r.collisions)
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
