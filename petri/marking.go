package petri

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Marking is a token count per place index — the position of each entry
// matches the Model's place index, not an identifier map, so equality and
// hashing are cheap vector operations rather than string-keyed ones.
type Marking []uint64

// Copy returns an independent copy of the marking.
func (m Marking) Copy() Marking {
	out := make(Marking, len(m))
	copy(out, m)
	return out
}

// Equals reports vector equality.
func (m Marking) Equals(other Marking) bool {
	if len(m) != len(other) {
		return false
	}
	for i, v := range m {
		if other[i] != v {
			return false
		}
	}
	return true
}

// Covers reports whether m[i] >= other[i] for every place i.
func (m Marking) Covers(other Marking) bool {
	for i, v := range other {
		if m[i] < v {
			return false
		}
	}
	return true
}

// StrictlyCovers reports whether m covers other and differs on at least one place.
func (m Marking) StrictlyCovers(other Marking) bool {
	if !m.Covers(other) {
		return false
	}
	for i, v := range other {
		if m[i] > v {
			return true
		}
	}
	return false
}

// Diff returns m - other, entrywise, as signed deltas: an entry is
// negative where other exceeds m.
func (m Marking) Diff(other Marking) []int64 {
	out := make([]int64, len(m))
	for i := range m {
		out[i] = int64(m[i]) - int64(other[i])
	}
	return out
}

// Total returns the sum of all tokens across places.
func (m Marking) Total() uint64 {
	var sum uint64
	for _, v := range m {
		sum += v
	}
	return sum
}

// Max returns the largest token count held by any single place.
func (m Marking) Max() uint64 {
	var max uint64
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

// IsZero reports whether every place is empty.
func (m Marking) IsZero() bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

// Hash returns a deterministic, order-sensitive hash of the marking
// vector, used as a state-graph key during bounded BFS.
func (m Marking) Hash() uint64 {
	h := fnv.New64a()
	for _, v := range m {
		fmt.Fprintf(h, "%d;", v)
	}
	return h.Sum64()
}

// String renders the marking against the model's place order, e.g. "P1:2, P3:1".
func (m Marking) String(model *Model) string {
	var parts []string
	for i, v := range m {
		if v == 0 {
			continue
		}
		if i < len(model.places) {
			parts = append(parts, fmt.Sprintf("%s:%d", model.places[i].ID, v))
		}
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}
