package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/shypn/topology/petri"
)

// CycleRecord describes one elementary cycle in the place/transition
// graph: an alternating sequence of place and transition ids that returns
// to its starting node without repeating any other node.
type CycleRecord struct {
	Nodes           []string `json:"nodes"`
	Kinds           []string `json:"kinds"`
	Names           []string `json:"names"`
	Length          int      `json:"length"`
	PlaceCount      int      `json:"placeCount"`
	TransitionCount int      `json:"transitionCount"`
	Type            string   `json:"type"`
}

// cycleType classifies a cycle by its place/transition composition: a
// self-loop (length <= 2), balanced (equal place and transition counts), or
// skewed toward one kind.
func cycleType(length, places, transitions int) string {
	switch {
	case length <= 2:
		return "self-loop"
	case places == transitions:
		return "balanced"
	case places > transitions:
		return "place-heavy"
	default:
		return "transition-heavy"
	}
}

// CycleAnalyzer finds elementary cycles in the bipartite place/transition
// graph, grounded on the graph/topo Johnson's-algorithm implementation the
// pack's other analysis code builds on.
type CycleAnalyzer struct {
	base
}

var cycleOptions = []string{"max_cycles", "min_length"}

const defaultMaxCycles = 100

// NewCycleAnalyzer builds a cycle analyzer over model.
func NewCycleAnalyzer(model *petri.Model) *CycleAnalyzer {
	return &CycleAnalyzer{base: newBase(model, false)}
}

// Analyze finds elementary cycles. Recognized options: max_cycles
// (default 100; a negative value means unlimited), min_length (default 2).
func (a *CycleAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, cycleOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	maxCycles := options.IntOr("max_cycles", defaultMaxCycles)
	minLength := options.IntOr("min_length", 2)
	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 && m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no graph to search for cycles", map[string]any{
			"cycles":        []CycleRecord{},
			"count":         0,
			"longestLength": 0,
			"truncated":     false,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	bg := buildBipartite(m)
	raw := topo.DirectedCyclesIn(bg.g)

	var records []CycleRecord
	for _, cyc := range raw {
		if ctxDone(ctx, len(records)+1) {
			break
		}
		// DirectedCyclesIn repeats the start node at the end of each cycle;
		// drop it so Nodes lists every node once and Length counts them.
		if len(cyc) > 1 && cyc[0].ID() == cyc[len(cyc)-1].ID() {
			cyc = cyc[:len(cyc)-1]
		}
		if len(cyc) < minLength {
			continue
		}
		rec := CycleRecord{Length: len(cyc)}
		for _, n := range cyc {
			rec.Nodes = append(rec.Nodes, bg.nodeName(m, n.ID()))
			rec.Names = append(rec.Names, bg.nodeDisplayName(m, n.ID()))
			kind := bg.nodeType(n.ID())
			rec.Kinds = append(rec.Kinds, kind)
			if kind == "place" {
				rec.PlaceCount++
			} else {
				rec.TransitionCount++
			}
		}
		rec.Type = cycleType(rec.Length, rec.PlaceCount, rec.TransitionCount)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Length != records[j].Length {
			return records[i].Length < records[j].Length
		}
		return joinForSort(records[i].Nodes) < joinForSort(records[j].Nodes)
	})

	longest := 0
	for _, rec := range records {
		if rec.Length > longest {
			longest = rec.Length
		}
	}

	var warnings []string
	truncated := false
	if maxCycles >= 0 && len(records) > maxCycles {
		records = records[:maxCycles]
		truncated = true
		warnings = append(warnings, fmt.Sprintf("truncated at %d", maxCycles))
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"cycles":        records,
			"count":         len(records),
			"longestLength": longest,
			"truncated":     truncated,
		},
		Summary:  fmt.Sprintf("found %d elementary cycle(s)", len(records)),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// FindCyclesContainingNode filters the main cycle result down to those
// whose node list includes nodeID (a place or transition id).
func (a *CycleAnalyzer) FindCyclesContainingNode(ctx context.Context, nodeID string) ([]CycleRecord, error) {
	r, err := a.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	all, _ := r.Data["cycles"].([]CycleRecord)
	out := make([]CycleRecord, 0)
	for _, rec := range all {
		for _, n := range rec.Nodes {
			if n == nodeID {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}
