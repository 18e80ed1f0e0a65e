package analysis

import (
	"context"
	"testing"
)

func TestPath_ShortestPathBetweenPlaces(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPathAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"from": "P1", "to": "P2"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("found", false) != true {
		t.Fatal("expected a path from P1 to P2")
	}
	if r.Get("hops", -1) != 2 {
		t.Fatalf("expected 2 hops (P1->T1->P2), got %v", r.Get("hops", -1))
	}
}

func TestPath_MissingOptionsFails(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPathAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"from": "P1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Success {
		t.Fatal("expected failure when to is missing")
	}
}

func TestPath_UnknownNodeFails(t *testing.T) {
	m := twoPlaceCycle(t)
	a := NewPathAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"from": "P1", "to": "Nope"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Success {
		t.Fatal("expected failure for an unknown node id")
	}
}
