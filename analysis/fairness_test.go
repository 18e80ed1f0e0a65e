package analysis

import (
	"context"
	"testing"

	"github.com/shypn/topology/petri"
)

func TestFairness_PriorityDifferenceIsStarvationRisk(t *testing.T) {
	m, err := petri.Build().
		Place("Shared", 1).
		Place("HighOut", 0).
		Place("LowOut", 0).
		TransitionWithPriority("THigh", petri.Immediate, 2).
		TransitionWithPriority("TLow", petri.Immediate, 1).
		Arc("Shared", "THigh", 1).
		Arc("THigh", "HighOut", 1).
		Arc("Shared", "TLow", 1).
		Arc("TLow", "LowOut", 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := NewFairnessAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("count", -1) != 1 {
		t.Fatalf("expected one conflict set, got %v", r.Get("count", -1))
	}
	sets, _ := r.Data["conflictSets"].([]ConflictSetRecord)
	if !sets[0].StarvationRisk {
		t.Fatal("expected a starvation risk given differing priorities")
	}
	if len(sets[0].Transitions) != 2 {
		t.Fatalf("expected both transitions in the conflict set, got %v", sets[0].Transitions)
	}
}

func TestFairness_NoConflictsOnCycle(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewFairnessAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("count", -1) != 0 {
		t.Fatalf("expected no conflicts in a simple cycle, got %v", r.Get("count", -1))
	}
}
