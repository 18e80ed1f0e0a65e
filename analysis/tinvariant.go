package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// TInvariantRecord describes one transition invariant: a non-negative
// integer firing-count vector x over transitions with Cx = 0, i.e. a
// firing multiset that returns the net to its starting marking.
type TInvariantRecord struct {
	Transitions  []string `json:"transitions"`
	FiringCounts []int64  `json:"firingCounts"`
	CycleLength  int64    `json:"cycleLength"`
	SupportSize  int      `json:"supportSize"`
}

// TInvariantAnalyzer finds T-invariants: reproducible firing sequences.
type TInvariantAnalyzer struct {
	base
}

var tInvariantOptions = []string{"max_invariants"}

// NewTInvariantAnalyzer builds a T-invariant analyzer over model.
func NewTInvariantAnalyzer(model *petri.Model) *TInvariantAnalyzer {
	return &TInvariantAnalyzer{base: newBase(model, false)}
}

// Analyze computes the net's T-invariants. Recognized options:
// max_invariants (default unlimited).
func (a *TInvariantAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, tInvariantOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	maxInvariants := -1
	if options.Has("max_invariants") {
		maxInvariants = options.IntOr("max_invariants", -1)
		if maxInvariants < 0 {
			r := failure("invalid options", fmt.Errorf("%w: max_invariants must be >= 0", ErrInvalidOption))
			return finalize(start, optionParams(options), 0, r), nil
		}
	}

	m := a.model
	params := optionParams(options)

	if m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no transitions to fire", map[string]any{
			"invariants":         []TInvariantRecord{},
			"count":              0,
			"coveredTransitions": []string{},
			"coverageRatio":      0.0,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	var records []TInvariantRecord
	var warnings []string

	if m.NumPlaces() == 0 {
		// No places means every transition fires freely with no state to
		// preserve: each transition trivially reproduces the (empty) marking
		// on its own.
		for _, t := range m.Transitions() {
			records = append(records, TInvariantRecord{
				Transitions:  []string{t.ID},
				FiringCounts: []int64{1},
				CycleLength:  1,
				SupportSize:  1,
			})
		}
	} else {
		c := m.IncidenceMatrix()
		basis, condNumber, ok := svdNullSpace(c, false)
		if !ok {
			r := failure("SVD factorization failed", ErrInternal)
			r = finalize(start, params, 0, r)
			a.store(k, r)
			return r, nil
		}
		if condNumber > 1e12 {
			warnings = append(warnings, "numeric instability: incidence matrix is ill-conditioned")
		}

		seen := make(map[string]bool)
		for _, b := range basis {
			indices, coeffs, ok := rationalizeVector(b.vec)
			if !ok {
				warnings = append(warnings, "non-rational T-invariant discarded")
				continue
			}
			key := invariantKey(indices, coeffs)
			if seen[key] {
				continue
			}
			seen[key] = true

			rec := TInvariantRecord{SupportSize: len(indices)}
			var cycleLen int64
			for i, idx := range indices {
				transID := m.TransID(idx)
				coeff := coeffs[i]
				rec.Transitions = append(rec.Transitions, transID)
				rec.FiringCounts = append(rec.FiringCounts, coeff)
				cycleLen += coeff
			}
			rec.CycleLength = cycleLen
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if len(records[i].Transitions) == 0 || len(records[j].Transitions) == 0 {
			return false
		}
		return records[i].Transitions[0] < records[j].Transitions[0]
	})

	if maxInvariants >= 0 && len(records) > maxInvariants {
		records = records[:maxInvariants]
		warnings = append(warnings, fmt.Sprintf("truncated at %d", maxInvariants))
	}

	covered := make(map[string]bool)
	for _, rec := range records {
		for _, t := range rec.Transitions {
			covered[t] = true
		}
	}
	coveredList := make([]string, 0, len(covered))
	for t := range covered {
		coveredList = append(coveredList, t)
	}
	sort.Strings(coveredList)

	ratio := 0.0
	if m.NumTransitions() > 0 {
		ratio = float64(len(coveredList)) / float64(m.NumTransitions())
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"invariants":         records,
			"count":              len(records),
			"coveredTransitions": coveredList,
			"coverageRatio":      ratio,
		},
		Summary:  fmt.Sprintf("found %d T-invariant(s) covering %d/%d transitions", len(records), len(coveredList), m.NumTransitions()),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// FindInvariantsContainingTransition filters the default-options result to
// invariants whose support includes transitionID.
func (a *TInvariantAnalyzer) FindInvariantsContainingTransition(ctx context.Context, transitionID string) ([]TInvariantRecord, error) {
	r, err := a.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	if !r.Success {
		return nil, nil
	}
	all, _ := r.Data["invariants"].([]TInvariantRecord)
	var out []TInvariantRecord
	for _, inv := range all {
		for _, t := range inv.Transitions {
			if t == transitionID {
				out = append(out, inv)
				break
			}
		}
	}
	return out, nil
}
