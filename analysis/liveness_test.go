package analysis

import (
	"context"
	"testing"
)

func TestLiveness_TwoPlaceCycleIsFullyLive(t *testing.T) {
	m := twoPlaceCycle(t)
	suite := NewSuite(m)
	r, err := suite.Liveness.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	if r.Get("overallLevel", "") != "L4" {
		t.Fatalf("expected overall level L4, got %v", r.Get("overallLevel", ""))
	}
}

func TestLiveness_DoneSinkNetStallsAtL1(t *testing.T) {
	m := doneSinkNet(t)
	suite := NewSuite(m)
	r, err := suite.Liveness.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Get("overallLevel", "") != "L1" {
		t.Fatalf("expected overall level L1 (Complete dies out after firing once), got %v", r.Get("overallLevel", ""))
	}
}
