package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// SiphonRecord describes one siphon: a place set that, once empty, stays
// empty forever (no transition can ever refill it without also being fed
// by it first).
type SiphonRecord struct {
	Places      []string `json:"places"`
	Size        int      `json:"size"`
	Marked      bool     `json:"marked"`
	Criticality string   `json:"criticality"`
}

// siphonCriticality buckets a siphon by emptiness and size, per the
// structural-deadlock severity rule: small unmarked siphons are the
// most urgent, large marked ones the least.
func siphonCriticality(marked bool, size int) string {
	switch {
	case !marked && size <= 3:
		return "critical"
	case !marked && size <= 5:
		return "high"
	case !marked:
		return "medium"
	case size > 5:
		return "none"
	default:
		return "low"
	}
}

// SiphonAnalyzer finds siphons: structural deadlock witnesses.
type SiphonAnalyzer struct {
	base
}

var siphonOptions = []string{"only_minimal", "max_size"}

// NewSiphonAnalyzer builds a siphon analyzer over model.
func NewSiphonAnalyzer(model *petri.Model) *SiphonAnalyzer {
	return &SiphonAnalyzer{base: newBase(model, true)}
}

// Analyze finds siphons. Recognized options: only_minimal (default true),
// max_size (default: exhaustive, or a bounded scan on large models).
func (a *SiphonAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, siphonOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	onlyMinimal := options.BoolOr("only_minimal", true)
	maxSize := options.IntOr("max_size", -1)
	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: no places to form a siphon", map[string]any{
			"siphons":       []SiphonRecord{},
			"count":         0,
			"unmarkedCount": 0,
			"deadlockRisk":  false,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	candidates, truncated, cancelled := findSiphonCandidates(ctx, m, maxSize)
	if onlyMinimal {
		candidates = filterMinimal(candidates)
	}

	marking := m.CurrentMarking()
	records := make([]SiphonRecord, 0, len(candidates))
	unmarked := 0
	for _, c := range candidates {
		rec := SiphonRecord{Size: len(c.places)}
		marked := false
		for _, idx := range c.places {
			rec.Places = append(rec.Places, m.PlaceID(idx))
			if marking[idx] > 0 {
				marked = true
			}
		}
		rec.Marked = marked
		if !marked {
			unmarked++
		}
		sort.Strings(rec.Places)
		rec.Criticality = siphonCriticality(rec.Marked, rec.Size)
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

	emptySiphons := make([]SiphonRecord, 0, unmarked)
	for _, rec := range records {
		if !rec.Marked {
			emptySiphons = append(emptySiphons, rec)
		}
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"siphons":       records,
			"count":         len(records),
			"unmarkedCount": unmarked,
			"deadlockRisk":  unmarked > 0,
			"emptySiphons":  emptySiphons,
		},
		Summary:  fmt.Sprintf("found %d siphon(s), %d unmarked", len(records), unmarked),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// FindSiphonsContainingPlace filters the main siphon result down to those
// that include placeID.
func (a *SiphonAnalyzer) FindSiphonsContainingPlace(ctx context.Context, placeID string) ([]SiphonRecord, error) {
	r, err := a.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	all, _ := r.Data["siphons"].([]SiphonRecord)
	out := make([]SiphonRecord, 0)
	for _, rec := range all {
		for _, p := range rec.Places {
			if p == placeID {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func joinForSort(ss []string) string {
	out := ""
	for _, s := range ss {
		out += s + "\x00"
	}
	return out
}
