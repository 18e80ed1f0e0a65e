package analysis

import (
	"context"
	"testing"

	"github.com/shypn/topology/petri"
)

// producerConsumerEmptyBuffer models a Buffer place with no transition that
// ever refills it: Buffer is drained by Drain but never fed, so {Buffer}
// is a siphon (its empty preset is trivially a subset of its postset), and
// it starts empty — an unmarked siphon, the structural signature of a
// deadlock that can never be escaped once reached.
func producerConsumerEmptyBuffer(t *testing.T) *petri.Model {
	t.Helper()
	m, err := petri.Build().
		Place("Buffer", 0).
		Place("Consumed", 0).
		Transition("Drain").
		Arc("Buffer", "Drain", 1).
		Arc("Drain", "Consumed", 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestSiphon_BufferUnmarkedIsDeadlockRisk(t *testing.T) {
	m := producerConsumerEmptyBuffer(t)
	a := NewSiphonAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success {
		t.Fatalf("expected success, got errors %v", r.Errors)
	}
	found := false
	records, _ := r.Data["siphons"].([]SiphonRecord)
	for _, rec := range records {
		if len(rec.Places) == 1 && rec.Places[0] == "Buffer" {
			found = true
			if rec.Marked {
				t.Fatal("empty Buffer siphon should be unmarked")
			}
		}
	}
	if !found {
		t.Fatal("expected {Buffer} to be reported as a siphon")
	}
}

func TestSiphon_EmptyModel(t *testing.T) {
	m, err := petri.Build().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := NewSiphonAnalyzer(m)
	r, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !r.Success || r.Get("count", -1) != 0 {
		t.Fatalf("expected empty success result, got %+v", r)
	}
}

func TestSiphon_MaxSizeLimitsSearch(t *testing.T) {
	m := producerConsumerEmptyBuffer(t)
	a := NewSiphonAnalyzer(m)
	r, err := a.Analyze(context.Background(), Options{"max_size": 1, "only_minimal": false})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	records, _ := r.Data["siphons"].([]SiphonRecord)
	for _, rec := range records {
		if rec.Size > 1 {
			t.Fatalf("max_size=1 should exclude larger siphons, got %+v", rec)
		}
	}
}
