package analysis

import (
	"context"
	"testing"

	"github.com/shypn/topology/petri"
)

// doneSinkNet models a Done place that, once reached, can never be
// drained: no transition ever removes tokens from it, so {Done} is a
// trap (its empty postset is trivially a subset of its preset).
func doneSinkNet(t *testing.T) *petri.Model {
	t.Helper()
	m, err := petri.Build().
		Place("Source", 1).
		Place("Done", 0).
		Transition("Complete").
		Arc("Source", "Complete", 1).
		Arc("Complete", "Done", 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestTrap_DoneSinkIsTrap(t *testing.T) {
	m := doneSinkNet(t)
	a := NewTrapAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	records, _ := r.Data["traps"].([]TrapRecord)
	found := false
	for _, rec := range records {
		if len(rec.Places) == 1 && rec.Places[0] == "Done" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected {Done} to be reported as a trap")
	}
}

func TestTrap_EmptyModel(t *testing.T) {
	m, err := petri.Build().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewTrapAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success || r.Get("count", -1) != 0 {
		t.Fatalf("expected empty success result, got %+v", r)
	}
}
