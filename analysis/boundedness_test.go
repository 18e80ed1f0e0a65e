package analysis

import (
	"context"
	"testing"
)

func TestBoundedness_TwoPlaceCycleIsSafe(t *testing.T) {
	m := twoPlaceCycle(t)
	suite := NewSuite(m)
	r, err := suite.Boundedness.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("safe", false) != true {
		t.Fatalf("expected the two-place cycle to be 1-safe, got %+v", r.Data)
	}
	bounds, _ := r.Data["bounds"].([]PlaceBoundRecord)
	for _, b := range bounds {
		if b.Source != "structural" {
			t.Fatalf("expected a structural bound derived from the P1+P2 invariant, got %+v", b)
		}
		if b.Bound != 1 {
			t.Fatalf("expected bound 1, got %d", b.Bound)
		}
	}
}

func TestBoundedness_EmptyModel(t *testing.T) {
	m := emptyModel(t)
	suite := NewSuite(m)
	r, err := suite.Boundedness.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success || r.Get("bounded", false) != true {
		t.Fatalf("expected vacuous boundedness, got %+v", r)
	}
}
