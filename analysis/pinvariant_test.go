package analysis

import (
	"context"
	"testing"

	"github.com/shypn/topology/petri"
)

func twoPlaceCycle(t *testing.T) *petri.Model {
	t.Helper()
	m, err := petri.Build().
		Place("P1", 1).
		Place("P2", 0).
		Transition("T1").
		Transition("T2").
		Arc("P1", "T1", 1).
		Arc("T1", "P2", 1).
		Arc("P2", "T2", 1).
		Arc("T2", "P1", 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestPInvariant_TwoPlaceCycle(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	count, _ := r.Data["count"].(int)
	if count != 1 {
		t.Fatalf("expected exactly one P-invariant, got %d", count)
	}
	invs, _ := r.Data["invariants"].([]PInvariantRecord)
	inv := invs[0]
	if inv.ConservedValue != 1 {
		t.Fatalf("expected conserved value 1 (P1+P2), got %d", inv.ConservedValue)
	}
	if len(inv.Places) != 2 {
		t.Fatalf("expected both places in the invariant's support, got %v", inv.Places)
	}
}

func TestPInvariant_EmptyModel(t *testing.T) {
	m, err := petri.Build().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewPInvariantAnalyzer(m)
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

func TestPInvariant_NoTransitionsTriviallyConserved(t *testing.T) {
	m, err := petri.Build().Place("P1", 5).Place("P2", 3).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewPInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("count", -1) != 2 {
		t.Fatalf("expected one trivial invariant per place, got %v", r.Get("count", -1))
	}
}

func TestPInvariant_MaxInvariantsTruncates(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"max_invariants": 0})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("count", -1) != 0 {
		t.Fatalf("expected truncation to 0, got %v", r.Get("count", -1))
	}
	if !r.HasWarnings() {
		t.Fatal("expected a truncation warning")
	}
}

func TestPInvariant_InvalidMaxInvariants(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPInvariantAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"max_invariants": -5})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Success {
		t.Fatal("expected failure for negative max_invariants")
	}
}

func TestPInvariant_CacheHitReturnsEqualResult(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPInvariantAnalyzer(m)
	r1, _ := a.Analyze(context.Background(), nil)
	r2, _ := a.Analyze(context.Background(), nil)
	if !r1.Equal(r2) {
		t.Fatal("repeated Analyze calls should be deterministic")
	}
}
