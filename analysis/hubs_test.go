package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/shypn/topology/petri"
)

// hubWithTenNeighbors models a central place connected to ten distinct
// transitions, each with its own downstream place.
func hubWithTenNeighbors(t *testing.T) *petri.Model {
	t.Helper()
	b := petri.Build().Place("Hub", 1)
	for i := 0; i < 10; i++ {
		tid := fmt.Sprintf("T%d", i)
		pid := fmt.Sprintf("P%d", i)
		b = b.Transition(tid).Place(pid, 0).Arc("Hub", tid, 1).Arc(tid, pid, 1)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestHub_CentralPlaceRanksFirst(t *testing.T) {
	m := hubWithTenNeighbors(t)
	a := NewHubAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"top_n": 1})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	records, _ := r.Data["hubs"].([]HubRecord)
	if len(records) != 1 {
		t.Fatalf("expected top_n=1 to return one record, got %d", len(records))
	}
	if records[0].ID != "Hub" || records[0].Degree != 10 {
		t.Fatalf("expected Hub with degree 10 to rank first, got %+v", records[0])
	}
}
