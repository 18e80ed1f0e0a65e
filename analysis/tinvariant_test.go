package analysis

import (
	"context"
	"testing"

	"github.com/shypn/topology/petri"
)

func TestTInvariant_TwoPlaceCycle(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewTInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("count", -1) != 1 {
		t.Fatalf("expected exactly one T-invariant, got %v", r.Get("count", -1))
	}
	invs, _ := r.Data["invariants"].([]TInvariantRecord)
	inv := invs[0]
	if inv.CycleLength != 2 {
		t.Fatalf("expected cycle length 2 (T1+T2), got %d", inv.CycleLength)
	}
	if len(inv.Transitions) != 2 {
		t.Fatalf("expected both transitions in the invariant's support, got %v", inv.Transitions)
	}
}

func TestTInvariant_EmptyModel(t *testing.T) {
	m, err := petri.Build().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewTInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatal("empty model must yield Success=true")
	}
	if r.Get("count", -1) != 0 {
		t.Fatalf("expected count 0, got %v", r.Get("count", -1))
	}
}

func TestTInvariant_NoPlacesTriviallyFree(t *testing.T) {
	m, err := petri.Build().Transition("T1").Transition("T2").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewTInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("count", -1) != 2 {
		t.Fatalf("expected one trivial invariant per transition, got %v", r.Get("count", -1))
	}
}

func TestTInvariant_FindContainingTransition(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewTInvariantAnalyzer(m)
	invs, err := a.FindInvariantsContainingTransition(context.Background(), "T1")
	if err != nil {
		t.Fatalf("FindInvariantsContainingTransition: %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("expected T1 to appear in one invariant, got %d", len(invs))
	}
}
