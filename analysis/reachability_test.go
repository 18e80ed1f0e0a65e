package analysis

import (
	"context"
	"testing"
)

func TestReachability_TwoPlaceCycleHasTwoStates(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewReachabilityAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("reachableCount", -1) != 2 {
		t.Fatalf("expected 2 reachable states (P1 marked, P2 marked), got %v", r.Get("reachableCount", -1))
	}
	if r.Get("deadlockCount", -1) != 0 {
		t.Fatalf("expected no deadlocks in a perpetual cycle, got %v", r.Get("deadlockCount", -1))
	}
}

func TestReachability_UnrefillableBufferIsImmediateDeadlock(t *testing.T) {
	m := producerConsumerEmptyBuffer(t)
	a := NewReachabilityAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("deadlockCount", -1) != 1 {
		t.Fatalf("expected exactly one (initial) deadlock state, got %v", r.Get("deadlockCount", -1))
	}
}

func TestReachability_EmptyModel(t *testing.T) {
	m := emptyModel(t)
	a := NewReachabilityAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success || r.Get("reachableCount", -1) != 1 {
		t.Fatalf("expected a single trivial state, got %+v", r)
	}
}
