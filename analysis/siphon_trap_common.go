package analysis

import (
	"context"

	"github.com/shypn/topology/petri"
)

// maxExhaustiveSearchPlaces bounds exhaustive subset enumeration: beyond
// this place count the search space (2^n) is abandoned in favor of a small
// bounded-size scan, and a warning is attached.
const maxExhaustiveSearchPlaces = 20

// defaultBoundedSearchSize is the subset size explored when the model is
// too large for exhaustive enumeration and the caller gave no max_size.
const defaultBoundedSearchSize = 3

// presetTransitions returns the union, as a set, of transitions feeding
// any place in idxs (•S in siphon/trap terminology).
func presetTransitions(m *petri.Model, idxs []int) map[int]bool {
	out := make(map[int]bool)
	for _, p := range idxs {
		for _, t := range m.PlaceInputs(p) {
			out[t] = true
		}
	}
	return out
}

// postsetTransitions returns the union, as a set, of transitions drawing
// from any place in idxs (S• in siphon/trap terminology).
func postsetTransitions(m *petri.Model, idxs []int) map[int]bool {
	out := make(map[int]bool)
	for _, p := range idxs {
		for _, t := range m.PlaceOutputs(p) {
			out[t] = true
		}
	}
	return out
}

// subsetOf reports whether every element of a is present in b.
func subsetOf(a, b map[int]bool) bool {
	for t := range a {
		if !b[t] {
			return false
		}
	}
	return true
}

// isSiphon reports whether the place set idxs is a siphon: every
// transition that can add tokens to the set can also remove tokens from
// it (•S ⊆ S•).
func isSiphon(m *petri.Model, idxs []int) bool {
	return subsetOf(presetTransitions(m, idxs), postsetTransitions(m, idxs))
}

// candidateSet is one place-index subset found during a siphon (or, over a
// reversed model, trap) search.
type candidateSet struct {
	places []int
}

// findSiphonCandidates enumerates place subsets satisfying isSiphon over m,
// honoring maxSize (−1 for unbounded within the search strategy). When m
// has more places than maxExhaustiveSearchPlaces, the search is bounded to
// small subsets only and truncated is reported true. The search also stops
// early, reporting cancelled true, if ctx is done.
func findSiphonCandidates(ctx context.Context, m *petri.Model, maxSize int) (sets []candidateSet, truncated, cancelled bool) {
	n := m.NumPlaces()
	limit := n
	if n > maxExhaustiveSearchPlaces {
		truncated = true
		limit = defaultBoundedSearchSize
		if maxSize >= 0 {
			limit = maxSize
		}
	}
	if maxSize >= 0 && maxSize < limit {
		limit = maxSize
	}

	iter := 0
	var cur []int
	var search func(next int)
	search = func(next int) {
		if cancelled {
			return
		}
		iter++
		if ctxDone(ctx, iter) {
			cancelled = true
			return
		}
		if len(cur) > 0 {
			if isSiphon(m, cur) {
				sets = append(sets, candidateSet{places: append([]int(nil), cur...)})
			}
		}
		if len(cur) >= limit {
			return
		}
		for i := next; i < n; i++ {
			cur = append(cur, i)
			search(i + 1)
			cur = cur[:len(cur)-1]
			if cancelled {
				return
			}
		}
	}
	search(0)
	return sets, truncated, cancelled
}

// filterMinimal drops every set that strictly contains another set in the
// same collection, leaving only the inclusion-minimal ones.
func filterMinimal(sets []candidateSet) []candidateSet {
	isSubsetOfIndices := func(a, b []int) bool {
		if len(a) >= len(b) {
			return false
		}
		bs := make(map[int]bool, len(b))
		for _, v := range b {
			bs[v] = true
		}
		for _, v := range a {
			if !bs[v] {
				return false
			}
		}
		return true
	}

	var out []candidateSet
	for i, s := range sets {
		minimal := true
		for j, other := range sets {
			if i == j {
				continue
			}
			if isSubsetOfIndices(other.places, s.places) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, s)
		}
	}
	return out
}
