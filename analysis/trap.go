package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// TrapRecord describes one trap: a place set that, once marked, stays
// marked forever (no transition can ever fully drain it without also
// feeding it first).
type TrapRecord struct {
	Places      []string `json:"places"`
	Size        int      `json:"size"`
	Marked      bool     `json:"marked"`
	Criticality string   `json:"criticality"`
}

// trapCriticality flags overflow risk: a trap holding more than 100 tokens
// can never drain, so large token totals matter more than set size.
func trapCriticality(totalTokens uint64, size int) string {
	switch {
	case totalTokens > 100:
		return "high"
	case size <= 3:
		return "medium"
	default:
		return "low"
	}
}

// TrapAnalyzer finds traps. A trap of a net is exactly a siphon of the
// net's reverse (swap every arc's direction), per petri.Model.Reverse's
// duality: this analyzer reuses the siphon search over a cached reversed
// model instead of re-deriving the dual condition from scratch.
type TrapAnalyzer struct {
	base
	reversed *petri.Model
}

var trapOptions = []string{"only_minimal", "max_size"}

// NewTrapAnalyzer builds a trap analyzer over model.
func NewTrapAnalyzer(model *petri.Model) *TrapAnalyzer {
	var reversed *petri.Model
	if model.NumPlaces() > 0 {
		reversed = model.Reverse()
	}
	return &TrapAnalyzer{base: newBase(model, true), reversed: reversed}
}

// Analyze finds traps. Recognized options: only_minimal (default true),
// max_size (default: exhaustive, or a bounded scan on large models).
func (a *TrapAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, trapOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	onlyMinimal := options.BoolOr("only_minimal", true)
	maxSize := options.IntOr("max_size", -1)
	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: no places to form a trap", map[string]any{
			"traps":         []TrapRecord{},
			"count":         0,
			"unmarkedCount": 0,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	candidates, truncated, cancelled := findSiphonCandidates(ctx, a.reversed, maxSize)
	if onlyMinimal {
		candidates = filterMinimal(candidates)
	}

	marking := m.CurrentMarking()
	records := make([]TrapRecord, 0, len(candidates))
	unmarked := 0
	for _, c := range candidates {
		rec := TrapRecord{Size: len(c.places)}
		marked := false
		var totalTokens uint64
		for _, idx := range c.places {
			rec.Places = append(rec.Places, m.PlaceID(idx))
			if marking[idx] > 0 {
				marked = true
			}
			totalTokens += marking[idx]
		}
		rec.Marked = marked
		if !marked {
			unmarked++
		}
		sort.Strings(rec.Places)
		rec.Criticality = trapCriticality(totalTokens, rec.Size)
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Size != records[j].Size {
			return records[i].Size < records[j].Size
		}
		return joinForSort(records[i].Places) < joinForSort(records[j].Places)
	})

	var warnings []string
	if truncated {
		bound := defaultBoundedSearchSize
		if maxSize >= 0 {
			bound = maxSize
		}
		warnings = append(warnings, fmt.Sprintf("model has %d places: limiting search to subsets up to size %d", m.NumPlaces(), bound))
	}
	if cancelled {
		warnings = append(warnings, "search cancelled before completion: results may be incomplete")
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"traps":         records,
			"count":         len(records),
			"unmarkedCount": unmarked,
		},
		Summary:  fmt.Sprintf("found %d trap(s), %d unmarked", len(records), unmarked),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}
