package analysis

import (
	"context"
	"testing"
)

func TestCycle_TwoPlaceCycleHasOneElementaryCycle(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewCycleAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("count", -1) != 1 {
		t.Fatalf("expected exactly one elementary cycle, got %v", r.Get("count", -1))
	}
	records, _ := r.Data["cycles"].([]CycleRecord)
	if records[0].Length != 4 {
		t.Fatalf("expected cycle of length 4 (P1,T1,P2,T2), got %d", records[0].Length)
	}
}

func TestCycle_MaxCyclesTruncates(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewCycleAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"max_cycles": 0})
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
