package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// PlaceBoundRecord reports the bound found for one place, and how it was
// derived.
type PlaceBoundRecord struct {
	Place  string `json:"place"`
	Bound  uint64 `json:"bound"`
	Source string `json:"source"` // "structural" or "reachability"
}

// BoundednessAnalyzer determines whether every place's token count stays
// below a finite bound, preferring the cheap structural argument from
// positive P-invariants and falling back to the reachability analyzer's
// empirical per-place maxima for places no invariant covers.
type BoundednessAnalyzer struct {
	base
	pInvariants  *PInvariantAnalyzer
	reachability *ReachabilityAnalyzer
}

var boundednessOptions = []string{"k", "max_states", "max_bound", "check_conservation"}

const defaultMaxBound = 1000

// NewBoundednessAnalyzer builds a boundedness analyzer over model. Either
// dependency may be nil: without pInvariants every place falls back to the
// reachability bound; without reachability, places uncovered by a
// structural bound are reported unresolved rather than failing outright.
func NewBoundednessAnalyzer(model *petri.Model, pInvariants *PInvariantAnalyzer, reachability *ReachabilityAnalyzer) *BoundednessAnalyzer {
	return &BoundednessAnalyzer{base: newBase(model, true), pInvariants: pInvariants, reachability: reachability}
}

// Analyze determines each place's bound. Recognized options: k (if set,
// also reports whether the net is k-bounded), max_states (forwarded to
// the reachability fallback).
func (a *BoundednessAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, boundednessOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: vacuously bounded", map[string]any{
			"bounds":          []PlaceBoundRecord{},
			"bounded":         true,
			"safe":            true,
			"isConservative":  true,
			"unboundedPlaces": []string{},
			"placeBounds":     map[string]any{},
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	maxBound := uint64(options.IntOr("max_bound", defaultMaxBound))
	checkConservation := options.BoolOr("check_conservation", true)

	structural := make(map[int]uint64)
	isConservative := false
	if checkConservation && a.pInvariants != nil {
		invResult, err := a.pInvariants.Analyze(ctx, nil)
		if err == nil && invResult.Success {
			invs, _ := invResult.Data["invariants"].([]PInvariantRecord)
			for _, inv := range invs {
				allPositive := true
				for _, w := range inv.Weights {
					if w <= 0 {
						allPositive = false
						break
					}
				}
				if !allPositive || inv.ConservedValue < 0 {
					continue
				}
				if len(inv.Places) == m.NumPlaces() {
					isConservative = true
				}
				for i, placeID := range inv.Places {
					idx, ok := m.PlaceIndex(placeID)
					if !ok {
						continue
					}
					bound := uint64(inv.ConservedValue) / uint64(inv.Weights[i])
					if existing, has := structural[idx]; !has || bound < existing {
						structural[idx] = bound
					}
				}
			}
		}
	}

	var warnings []string
	needsEmpirical := len(structural) < m.NumPlaces()
	var maxPerPlace map[string]uint64
	if needsEmpirical && a.reachability != nil {
		reachOpts := Options{}
		if options.Has("max_states") {
			reachOpts["max_states"] = options.IntOr("max_states", defaultMaxStates)
		}
		rr, err := a.reachability.Analyze(ctx, reachOpts)
		if err == nil && rr.Success {
			if mp, ok := rr.Data["maxTokensPerPlace"].(map[string]uint64); ok {
				maxPerPlace = mp
			}
			if rr.Get("truncated", false) == true {
				warnings = append(warnings, "reachability search truncated: empirical bounds may be underestimates")
			}
			if rr.HasWarnings() {
				warnings = append(warnings, rr.Warnings...)
			}
		}
	}

	records := make([]PlaceBoundRecord, 0, m.NumPlaces())
	bounded := true
	unresolved := 0
	kBound := options.IntOr("k", -1)
	safe := true
	var unboundedPlaces []string
	placeBounds := make(map[string]any, m.NumPlaces())
	var maxResolvedBound uint64

	for i, p := range m.Places() {
		if b, ok := structural[i]; ok {
			records = append(records, PlaceBoundRecord{Place: p.ID, Bound: b, Source: "structural"})
			if b > 1 {
				safe = false
			}
			if b > maxBound {
				unboundedPlaces = append(unboundedPlaces, p.ID)
				bounded = false
				placeBounds[p.ID] = "unbounded"
			} else {
				placeBounds[p.ID] = b
				if b > maxResolvedBound {
					maxResolvedBound = b
				}
			}
			continue
		}
		if maxPerPlace != nil {
			b := maxPerPlace[p.ID]
			records = append(records, PlaceBoundRecord{Place: p.ID, Bound: b, Source: "reachability"})
			if b > 1 {
				safe = false
			}
			if b > maxBound {
				unboundedPlaces = append(unboundedPlaces, p.ID)
				bounded = false
				placeBounds[p.ID] = "unbounded"
			} else {
				placeBounds[p.ID] = b
				if b > maxResolvedBound {
					maxResolvedBound = b
				}
			}
			continue
		}
		unresolved++
		bounded = false
		unboundedPlaces = append(unboundedPlaces, p.ID)
		placeBounds[p.ID] = "unbounded"
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Place < records[j].Place })
	sort.Strings(unboundedPlaces)

	if unresolved > 0 {
		warnings = append(warnings, fmt.Sprintf("%d place(s) have no structural or reachability-derived bound available", unresolved))
		safe = false
	}

	var kBoundOut any
	if bounded {
		kBoundOut = maxResolvedBound
	}

	data := map[string]any{
		"bounds":          records,
		"bounded":         bounded,
		"safe":            safe,
		"isConservative":  isConservative,
		"unboundedPlaces": unboundedPlaces,
		"placeBounds":     placeBounds,
		"kBound":          kBoundOut,
	}
	if kBound >= 0 {
		within := true
		for _, rec := range records {
			if rec.Bound > uint64(kBound) {
				within = false
				break
			}
		}
		data["kBounded"] = within && unresolved == 0
	}

	r := &Result{
		Success:  true,
		Data:     data,
		Summary:  fmt.Sprintf("resolved bounds for %d/%d place(s)", len(records), m.NumPlaces()),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}
