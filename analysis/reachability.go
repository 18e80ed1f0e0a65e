package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shypn/topology/petri"
)

const defaultMaxStates = 10000

// ReachabilityAnalyzer performs a bounded breadth-first search of the
// marking graph from the model's current marking.
type ReachabilityAnalyzer struct {
	base
}

var reachabilityOptions = []string{"max_states", "target", "max_depth", "compute_graph", "find_deadlocks"}

const defaultMaxDepth = 100

type reachabilityEdge struct {
	FromMarkingID int64  `json:"fromMarkingId"`
	TransitionID  string `json:"transitionId"`
	ToMarkingID   int64  `json:"toMarkingId"`
}

// NewReachabilityAnalyzer builds a reachability analyzer over model.
func NewReachabilityAnalyzer(model *petri.Model) *ReachabilityAnalyzer {
	return &ReachabilityAnalyzer{base: newBase(model, true)}
}

// Analyze explores the marking graph breadth-first from the model's
// current marking. Recognized options: max_states (default 10000), target
// (a map[string]any of place id -> token count, given as int or float64,
// to test reachability of; places it omits are taken as empty).
func (a *ReachabilityAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, reachabilityOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	maxStates := options.IntOr("max_states", defaultMaxStates)
	maxDepth := options.IntOr("max_depth", defaultMaxDepth)
	computeGraph := options.BoolOr("compute_graph", false)
	findDeadlocks := options.BoolOr("find_deadlocks", true)
	params := optionParams(options)
	m := a.model

	if maxStates <= 0 || maxDepth <= 0 {
		r := failure("invalid bounds", fmt.Errorf("%w: max_states and max_depth must be positive", ErrInvalidOption))
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: a single trivial marking", map[string]any{
			"reachableCount":     1,
			"totalStates":        1,
			"truncated":          false,
			"truncatedByStates":  false,
			"truncatedByDepth":   false,
			"maxDepthReached":    0,
			"deadlocks":          []map[string]uint64{},
			"deadlockStates":     []map[string]uint64{},
			"deadlockCount":      0,
			"maxTokensPerPlace":  map[string]uint64{},
			"tokenRangePerPlace": map[string]any{},
			"reachabilityGraph":  []reachabilityEdge{},
		})
		r = finalize(start, params, 1, r)
		a.store(k, r)
		return r, nil
	}

	var target petri.Marking
	if options.Has("target") {
		tmap, _ := options["target"].(map[string]any)
		target = make(petri.Marking, m.NumPlaces())
		for id, v := range tmap {
			idx, ok := m.PlaceIndex(id)
			if !ok {
				r := failure("invalid options", fmt.Errorf("%w: unknown place %q in target", ErrInvalidOption, id))
				r = finalize(start, params, 0, r)
				a.store(k, r)
				return r, nil
			}
			switch n := v.(type) {
			case int:
				target[idx] = uint64(n)
			case float64:
				target[idx] = uint64(n)
			}
		}
	}

	type queued struct {
		mk    petri.Marking
		depth int
		id    int64
	}

	visited := make(map[uint64]petri.Marking)
	ids := make(map[uint64]int64)
	var nextID int64
	initHash := m.CurrentMarking().Hash()
	visited[initHash] = m.CurrentMarking()
	ids[initHash] = nextID
	nextID++
	queue := []queued{{mk: m.CurrentMarking(), depth: 0, id: 0}}

	maxPerPlace := make([]uint64, m.NumPlaces())
	minPerPlace := make([]uint64, m.NumPlaces())
	for i, v := range m.CurrentMarking() {
		minPerPlace[i] = v
	}
	updateRange := func(mk petri.Marking) {
		for i, v := range mk {
			if v > maxPerPlace[i] {
				maxPerPlace[i] = v
			}
			if v < minPerPlace[i] {
				minPerPlace[i] = v
			}
		}
	}
	updateRange(queue[0].mk)

	var deadlocks []petri.Marking
	var edges []reachabilityEdge
	targetFound := target != nil && queue[0].mk.Equals(target)
	truncatedByStates := false
	truncatedByDepth := false
	unboundedGrowth := false
	maxDepthReached := 0

	iter := 0
	for len(queue) > 0 {
		iter++
		if ctxDone(ctx, iter) {
			truncatedByStates = true
			break
		}
		if len(visited) >= maxStates {
			truncatedByStates = true
			break
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.depth > maxDepthReached {
			maxDepthReached = cur.depth
		}
		if cur.depth >= maxDepth {
			truncatedByDepth = true
			continue
		}

		enabled := m.EnabledTransitions(cur.mk)
		if len(enabled) == 0 {
			if findDeadlocks {
				deadlocks = append(deadlocks, cur.mk)
			}
			continue
		}
		for _, t := range enabled {
			next, ok := m.Fire(t, cur.mk)
			if !ok {
				continue
			}
			if dominatesEverywhere(next, cur.mk) {
				unboundedGrowth = true
			}
			h := next.Hash()
			nid, seen := ids[h]
			if !seen {
				if len(visited) >= maxStates {
					truncatedByStates = true
					break
				}
				nid = nextID
				nextID++
				ids[h] = nid
				visited[h] = next
				updateRange(next)
				queue = append(queue, queued{mk: next, depth: cur.depth + 1, id: nid})
				if target != nil && next.Equals(target) {
					targetFound = true
				}
			}
			if computeGraph {
				edges = append(edges, reachabilityEdge{FromMarkingID: cur.id, TransitionID: m.TransID(t), ToMarkingID: nid})
			}
		}
	}

	deadlockData := make([]map[string]uint64, 0, len(deadlocks))
	for _, d := range deadlocks {
		deadlockData = append(deadlockData, markingToMap(m, d))
	}

	maxPerPlaceByID := make(map[string]uint64, len(maxPerPlace))
	tokenRange := make(map[string]any, len(maxPerPlace))
	for i, v := range maxPerPlace {
		maxPerPlaceByID[m.PlaceID(i)] = v
		tokenRange[m.PlaceID(i)] = map[string]uint64{"min": minPerPlace[i], "max": v}
	}

	if !computeGraph {
		edges = []reachabilityEdge{}
	}

	data := map[string]any{
		"reachableCount":     len(visited),
		"totalStates":        len(visited),
		"truncated":          truncatedByStates || truncatedByDepth,
		"truncatedByStates":  truncatedByStates,
		"truncatedByDepth":   truncatedByDepth,
		"maxDepthReached":    maxDepthReached,
		"deadlocks":          deadlockData,
		"deadlockStates":     deadlockData,
		"deadlockCount":      len(deadlocks),
		"maxTokensPerPlace":  maxPerPlaceByID,
		"tokenRangePerPlace": tokenRange,
		"reachabilityGraph":  edges,
	}
	if target != nil {
		data["targetReachable"] = targetFound
	}

	var warnings []string
	if truncatedByStates {
		warnings = append(warnings, fmt.Sprintf("search truncated at %d states: reachable set may be incomplete", maxStates))
	}
	if truncatedByDepth {
		warnings = append(warnings, fmt.Sprintf("search truncated at depth %d: reachable set may be incomplete", maxDepth))
	}
	if unboundedGrowth {
		warnings = append(warnings, "marking grew unboundedly — results may undercount")
	}

	r := &Result{
		Success:  true,
		Data:     data,
		Summary:  fmt.Sprintf("explored %d reachable state(s), %d deadlock(s)", len(visited), len(deadlocks)),
		Warnings: warnings,
	}
	r = finalize(start, params, len(visited), r)
	a.store(k, r)
	return r, nil
}

// dominatesEverywhere reports whether next strictly exceeds parent on every
// place — a cheap, immediate-predecessor approximation of the full
// "some ancestor is strictly dominated" unboundedness witness.
func dominatesEverywhere(next, parent petri.Marking) bool {
	if len(next) == 0 {
		return false
	}
	for i := range next {
		if next[i] <= parent[i] {
			return false
		}
	}
	return true
}

func markingToMap(m *petri.Model, mk petri.Marking) map[string]uint64 {
	out := make(map[string]uint64, len(mk))
	for i, v := range mk {
		if v == 0 {
			continue
		}
		out[m.PlaceID(i)] = v
	}
	return out
}
