package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shypn/topology/petri"
)

// PInvariantRecord describes one place invariant: a non-negative integer
// vector y over places with Cᵀy = 0.
type PInvariantRecord struct {
	Places         []string `json:"places"`
	Weights        []int64  `json:"weights"`
	SumExpression  string   `json:"sumExpression"`
	ConservedValue int64    `json:"conservedValue"`
	SupportSize    int      `json:"supportSize"`
}

// PInvariantAnalyzer finds P-invariants: conservation laws of the net.
type PInvariantAnalyzer struct {
	base
}

var pInvariantOptions = []string{"max_invariants"}

// NewPInvariantAnalyzer builds a P-invariant analyzer over model.
func NewPInvariantAnalyzer(model *petri.Model) *PInvariantAnalyzer {
	return &PInvariantAnalyzer{base: newBase(model, true)}
}

// Analyze computes the net's P-invariants. Recognized options:
// max_invariants (default unlimited).
func (a *PInvariantAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, pInvariantOptions)
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

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: no places to conserve", map[string]any{
			"invariants":    []PInvariantRecord{},
			"count":         0,
			"coveredPlaces": []string{},
			"coverageRatio": 0.0,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	var records []PInvariantRecord
	var warnings []string

	if m.NumTransitions() == 0 {
		// No transitions means no transition can ever change any place's
		// marking: every place is trivially conserved on its own.
		for i, p := range m.Places() {
			rec := PInvariantRecord{
				Places:         []string{p.ID},
				Weights:        []int64{1},
				SumExpression:  p.ID,
				ConservedValue: int64(m.CurrentMarking()[i]),
				SupportSize:    1,
			}
			records = append(records, rec)
		}
	} else {
		c := m.IncidenceMatrix()
		basis, condNumber, ok := svdNullSpace(c, true)
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
		marking := m.CurrentMarking()
		for _, b := range basis {
			indices, coeffs, ok := rationalizeVector(b.vec)
			if !ok {
				warnings = append(warnings, "non-rational P-invariant discarded")
				continue
			}
			key := invariantKey(indices, coeffs)
			if seen[key] {
				continue
			}
			seen[key] = true

			rec := PInvariantRecord{SupportSize: len(indices)}
			var conserved int64
			var parts []string
			for i, idx := range indices {
				placeID := m.PlaceID(idx)
				coeff := coeffs[i]
				rec.Places = append(rec.Places, placeID)
				rec.Weights = append(rec.Weights, coeff)
				conserved += coeff * int64(marking[idx])
				parts = append(parts, sumTerm(coeff, placeID))
			}
			rec.ConservedValue = conserved
			rec.SumExpression = strings.Join(parts, " + ")
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if len(records[i].Places) == 0 || len(records[j].Places) == 0 {
			return false
		}
		return records[i].Places[0] < records[j].Places[0]
	})

	if maxInvariants >= 0 && len(records) > maxInvariants {
		records = records[:maxInvariants]
		warnings = append(warnings, fmt.Sprintf("truncated at %d", maxInvariants))
	}

	covered := make(map[string]bool)
	for _, rec := range records {
		for _, p := range rec.Places {
			covered[p] = true
		}
	}
	coveredList := make([]string, 0, len(covered))
	for p := range covered {
		coveredList = append(coveredList, p)
	}
	sort.Strings(coveredList)

	ratio := 0.0
	if m.NumPlaces() > 0 {
		ratio = float64(len(coveredList)) / float64(m.NumPlaces())
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"invariants":    records,
			"count":         len(records),
			"coveredPlaces": coveredList,
			"coverageRatio": ratio,
		},
		Summary:  fmt.Sprintf("found %d P-invariant(s) covering %d/%d places", len(records), len(coveredList), m.NumPlaces()),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// FindInvariantsContainingPlace filters the default-options result to
// invariants whose support includes placeID.
func (a *PInvariantAnalyzer) FindInvariantsContainingPlace(ctx context.Context, placeID string) ([]PInvariantRecord, error) {
	r, err := a.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	if !r.Success {
		return nil, nil
	}
	all, _ := r.Data["invariants"].([]PInvariantRecord)
	var out []PInvariantRecord
	for _, inv := range all {
		for _, p := range inv.Places {
			if p == placeID {
				out = append(out, inv)
				break
			}
		}
	}
	return out, nil
}

func sumTerm(coeff int64, place string) string {
	if coeff == 1 {
		return place
	}
	return fmt.Sprintf("%d·%s", coeff, place)
}

func optionParams(o Options) map[string]any {
	out := make(map[string]any, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
