package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shypn/topology/petri"
)

// DeadlockAnalyzer detects both actual reachable dead markings (via the
// reachability analyzer) and the structural warning sign of a deadlock
// risk, an unmarked siphon (via the siphon analyzer), per their
// constructor-injected dependency.
type DeadlockAnalyzer struct {
	base
	siphons      *SiphonAnalyzer
	reachability *ReachabilityAnalyzer
}

var deadlockOptions = []string{"max_states"}

// NewDeadlockAnalyzer builds a deadlock analyzer over model.
func NewDeadlockAnalyzer(model *petri.Model, siphons *SiphonAnalyzer, reachability *ReachabilityAnalyzer) *DeadlockAnalyzer {
	return &DeadlockAnalyzer{base: newBase(model, true), siphons: siphons, reachability: reachability}
}

// Analyze reports reachable deadlocks and the structural deadlock risk
// posed by unmarked siphons. Recognized options: max_states (forwarded to
// the reachability dependency).
func (a *DeadlockAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, deadlockOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 {
		r := emptyModelResult("empty model: no state to deadlock in", map[string]any{
			"hasDeadlock":         false,
			"deadlockType":        "none",
			"severity":            "none",
			"deadlocks":           []map[string]uint64{},
			"structuralRisk":      false,
			"unmarkedSiphons":     []SiphonRecord{},
			"disabledTransitions": []string{},
			"recoverySuggestions": []string{},
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	var reachWarning, siphonWarning string
	var deadlocks []map[string]uint64
	var unmarkedSiphons []SiphonRecord
	structuralRisk := false

	g, gctx := errgroup.WithContext(ctx)
	if a.reachability != nil {
		g.Go(func() error {
			reachOpts := Options{}
			if options.Has("max_states") {
				reachOpts["max_states"] = options.IntOr("max_states", defaultMaxStates)
			}
			rr, err := a.reachability.Analyze(gctx, reachOpts)
			if err != nil {
				return fmt.Errorf("%w: reachability analyzer error", ErrDependencyUnavailable)
			}
			if rr.Success {
				if dl, ok := rr.Data["deadlocks"].([]map[string]uint64); ok {
					deadlocks = dl
				}
				if rr.Get("truncated", false) == true {
					reachWarning = "reachability search truncated: deadlock list may be incomplete"
				}
			}
			return nil
		})
	} else {
		reachWarning = "reachability dependency unavailable: deadlock search skipped"
	}

	if a.siphons != nil {
		g.Go(func() error {
			sr, err := a.siphons.Analyze(gctx, nil)
			if err == nil && sr.Success {
				if recs, ok := sr.Data["siphons"].([]SiphonRecord); ok {
					for _, rec := range recs {
						if !rec.Marked {
							unmarkedSiphons = append(unmarkedSiphons, rec)
						}
					}
				}
				structuralRisk = len(unmarkedSiphons) > 0
			}
			return nil
		})
	} else {
		siphonWarning = "siphon dependency unavailable: structural risk assessment skipped"
	}

	if err := g.Wait(); err != nil {
		r := failure("dependency failed", err)
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	var warnings []string
	if reachWarning != "" {
		warnings = append(warnings, reachWarning)
	}
	if siphonWarning != "" {
		warnings = append(warnings, siphonWarning)
	}

	currentMarking := m.CurrentMarking()
	enabled := m.EnabledTransitions(currentMarking)
	enabledSet := make(map[int]bool, len(enabled))
	for _, t := range enabled {
		enabledSet[t] = true
	}
	var disabledTransitions []string
	var recoverySuggestions []string
	for t := 0; t < m.NumTransitions(); t++ {
		if enabledSet[t] {
			continue
		}
		disabledTransitions = append(disabledTransitions, m.TransID(t))
		for _, p := range m.TransInputs(t) {
			w, _ := m.ArcWeight(p, t)
			if currentMarking[p] < w {
				recoverySuggestions = append(recoverySuggestions,
					fmt.Sprintf("add token to place %s (needed by %s)", m.PlaceID(p), m.TransID(t)))
			}
		}
	}
	behavioralDeadlock := m.NumTransitions() > 0 && len(enabled) == 0

	for _, rec := range unmarkedSiphons {
		if len(rec.Places) > 0 {
			recoverySuggestions = append(recoverySuggestions,
				fmt.Sprintf("add token to place %s (empties siphon {%s})", rec.Places[0], joinForSort(rec.Places)))
		}
	}

	deadlockType := "none"
	switch {
	case structuralRisk && behavioralDeadlock:
		deadlockType = "both"
	case structuralRisk:
		deadlockType = "structural"
	case behavioralDeadlock:
		deadlockType = "behavioral"
	}

	severity := "none"
	switch {
	case structuralRisk && behavioralDeadlock:
		severity = "critical"
	case behavioralDeadlock:
		severity = "high"
	case structuralRisk && len(enabled) > 0:
		severity = "medium"
	case len(disabledTransitions) > 0:
		severity = "low"
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"hasDeadlock":         len(deadlocks) > 0 || behavioralDeadlock,
			"deadlockType":        deadlockType,
			"severity":            severity,
			"deadlocks":           deadlocks,
			"structuralRisk":      structuralRisk,
			"unmarkedSiphons":     unmarkedSiphons,
			"disabledTransitions": disabledTransitions,
			"recoverySuggestions": recoverySuggestions,
		},
		Summary:  fmt.Sprintf("%d reachable deadlock(s), type=%s, severity=%s", len(deadlocks), deadlockType, severity),
		Warnings: warnings,
	}
	r = finalize(start, params, len(deadlocks), r)
	a.store(k, r)
	return r, nil
}
