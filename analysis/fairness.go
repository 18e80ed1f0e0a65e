package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// ConflictSetRecord groups transitions that structurally compete for
// tokens from at least one shared input place.
type ConflictSetRecord struct {
	Transitions       []string `json:"transitions"`
	SharedPlaces      []string `json:"sharedPlaces"`
	StarvationRisk    bool     `json:"starvationRisk"`
	StarvationLevel   string   `json:"starvationLevel"`
	PriorityConflicts []string `json:"priorityConflicts"`
}

// FairnessAnalyzer finds conflict sets (transitions competing for the
// same input places) and flags starvation risk where a priority
// difference lets one transition in the set always preempt another.
type FairnessAnalyzer struct {
	base
}

var fairnessOptions = []string{}

// NewFairnessAnalyzer builds a fairness analyzer over model.
func NewFairnessAnalyzer(model *petri.Model) *FairnessAnalyzer {
	return &FairnessAnalyzer{base: newBase(model, false)}
}

// Analyze finds structural conflict sets and flags starvation risk.
func (a *FairnessAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, fairnessOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	params := optionParams(options)
	m := a.model

	if m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no transitions to conflict", map[string]any{
			"conflictSets":        []ConflictSetRecord{},
			"count":               0,
			"starvationRiskCount": 0,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	parent := make([]int, m.NumTransitions())
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	sharedPlacesByPair := make(map[[2]int]map[int]bool)
	for p := range m.Places() {
		outputs := m.PlaceOutputs(p)
		for i := 0; i < len(outputs); i++ {
			for j := i + 1; j < len(outputs); j++ {
				union(outputs[i], outputs[j])
				key := orderedPair(outputs[i], outputs[j])
				if sharedPlacesByPair[key] == nil {
					sharedPlacesByPair[key] = make(map[int]bool)
				}
				sharedPlacesByPair[key][p] = true
			}
		}
	}

	groups := make(map[int][]int)
	for t := 0; t < m.NumTransitions(); t++ {
		root := find(t)
		groups[root] = append(groups[root], t)
	}

	var records []ConflictSetRecord
	starvationCount := 0
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)

		placeSet := make(map[int]bool)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				key := orderedPair(members[i], members[j])
				for p := range sharedPlacesByPair[key] {
					placeSet[p] = true
				}
			}
		}

		rec := ConflictSetRecord{}
		for _, t := range members {
			rec.Transitions = append(rec.Transitions, m.TransID(t))
		}
		var placeIdxs []int
		for p := range placeSet {
			placeIdxs = append(placeIdxs, p)
		}
		sort.Ints(placeIdxs)
		for _, p := range placeIdxs {
			rec.SharedPlaces = append(rec.SharedPlaces, m.PlaceID(p))
		}

		rec.StarvationRisk = hasStarvationRisk(m, members)
		rec.PriorityConflicts = priorityConflictTransitions(m, members)
		rec.StarvationLevel = starvationLevel(len(members), rec.StarvationRisk)
		if rec.StarvationRisk {
			starvationCount++
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return joinForSort(records[i].Transitions) < joinForSort(records[j].Transitions)
	})

	var priorityConflicts []string
	for _, rec := range records {
		priorityConflicts = append(priorityConflicts, rec.PriorityConflicts...)
	}
	netFairness := "strong"
	switch {
	case starvationCount > 0:
		netFairness = "none"
	case len(records) > 0:
		netFairness = "weak"
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"conflictSets":        records,
			"count":               len(records),
			"starvationRiskCount": starvationCount,
			"priorityConflicts":   priorityConflicts,
			"netFairness":         netFairness,
		},
		Summary: fmt.Sprintf("found %d conflict set(s), %d with starvation risk", len(records), starvationCount),
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// hasStarvationRisk reports whether the conflict set has at least two
// distinct, comparable priorities: the higher-priority transition could
// always be chosen over the lower one whenever both are enabled, starving
// the lower-priority transition indefinitely under a priority-respecting
// scheduler.
func hasStarvationRisk(m *petri.Model, members []int) bool {
	var maxPriority, minPriority *int
	for _, t := range members {
		p := m.Transitions()[t].Priority
		if p == nil {
			continue
		}
		if maxPriority == nil || *p > *maxPriority {
			maxPriority = p
		}
		if minPriority == nil || *p < *minPriority {
			minPriority = p
		}
	}
	return maxPriority != nil && minPriority != nil && *maxPriority != *minPriority
}

// priorityConflictTransitions lists the transitions in members whose
// priority disagrees with at least one other member of the same set.
func priorityConflictTransitions(m *petri.Model, members []int) []string {
	if !hasStarvationRisk(m, members) {
		return nil
	}
	var out []string
	for _, t := range members {
		if m.Transitions()[t].Priority != nil {
			out = append(out, m.TransID(t))
		}
	}
	return out
}

// starvationLevel buckets a conflict set's starvation severity by group
// size and whether a genuine priority disagreement exists.
func starvationLevel(size int, priorityConflict bool) string {
	switch {
	case priorityConflict && size > 2:
		return "high"
	case priorityConflict:
		return "medium"
	case size > 2:
		return "low"
	default:
		return "none"
	}
}

func orderedPair(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
