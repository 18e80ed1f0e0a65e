package analysis

import (
	"context"

	"github.com/shypn/topology/petri"
)

// Suite owns one instance of every analyzer for a model, wired with the
// constructor-injected cross-analyzer dependencies: P-invariants and
// reachability feed boundedness, siphons and reachability feed deadlock,
// and deadlock feeds liveness.
type Suite struct {
	PInvariants  *PInvariantAnalyzer
	TInvariants  *TInvariantAnalyzer
	Siphons      *SiphonAnalyzer
	Traps        *TrapAnalyzer
	Cycles       *CycleAnalyzer
	Paths        *PathAnalyzer
	Hubs         *HubAnalyzer
	Reachability *ReachabilityAnalyzer
	Boundedness  *BoundednessAnalyzer
	Deadlock     *DeadlockAnalyzer
	Liveness     *LivenessAnalyzer
	Fairness     *FairnessAnalyzer
}

// NewSuite builds every analyzer over model, with dependencies wired in
// the order boundedness, deadlock and liveness need them.
func NewSuite(model *petri.Model) *Suite {
	s := &Suite{
		PInvariants:  NewPInvariantAnalyzer(model),
		TInvariants:  NewTInvariantAnalyzer(model),
		Siphons:      NewSiphonAnalyzer(model),
		Traps:        NewTrapAnalyzer(model),
		Cycles:       NewCycleAnalyzer(model),
		Paths:        NewPathAnalyzer(model),
		Hubs:         NewHubAnalyzer(model),
		Reachability: NewReachabilityAnalyzer(model),
		Fairness:     NewFairnessAnalyzer(model),
	}
	s.Boundedness = NewBoundednessAnalyzer(model, s.PInvariants, s.Reachability)
	s.Deadlock = NewDeadlockAnalyzer(model, s.Siphons, s.Reachability)
	s.Liveness = NewLivenessAnalyzer(model, s.Deadlock)
	return s
}

// RunAll runs every analyzer in this package except the path analyzer
// (which needs from/to options) over model with default options and
// returns each Result keyed by a stable analyzer name. Panics
// are never raised here: any analyzer returning a Go error is recorded as
// a failed Result rather than aborting the whole run.
func RunAll(ctx context.Context, model *petri.Model) map[string]*Result {
	s := NewSuite(model)
	out := make(map[string]*Result, 12)

	run := func(name string, fn func(context.Context, Options) (*Result, error)) {
		r, err := fn(ctx, nil)
		if err != nil {
			r = failure("analyzer error", err)
		}
		out[name] = r
	}

	run("pInvariants", s.PInvariants.Analyze)
	run("tInvariants", s.TInvariants.Analyze)
	run("siphons", s.Siphons.Analyze)
	run("traps", s.Traps.Analyze)
	run("cycles", s.Cycles.Analyze)
	run("hubs", s.Hubs.Analyze)
	run("reachability", s.Reachability.Analyze)
	run("boundedness", s.Boundedness.Analyze)
	run("deadlock", s.Deadlock.Analyze)
	run("liveness", s.Liveness.Analyze)
	run("fairness", s.Fairness.Analyze)

	return out
}
