package petri

import (
	"errors"
	"testing"
)

func twoPlaceCycle(t *testing.T) *Model {
	t.Helper()
	m, err := Build().
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

func TestBuilder_TwoPlaceCycle(t *testing.T) {
	m := twoPlaceCycle(t)

	if m.NumPlaces() != 2 || m.NumTransitions() != 2 {
		t.Fatalf("got %d places, %d transitions", m.NumPlaces(), m.NumTransitions())
	}

	p1, ok := m.PlaceIndex("P1")
	if !ok {
		t.Fatal("P1 not indexed")
	}
	t1, ok := m.TransIndex("T1")
	if !ok {
		t.Fatal("T1 not indexed")
	}

	if w, ok := m.ArcWeight(p1, t1); !ok || w != 1 {
		t.Fatalf("ArcWeight(P1,T1) = %d, %v", w, ok)
	}

	mk := m.CurrentMarking()
	if !m.IsEnabled(t1, mk) {
		t.Fatal("T1 should be enabled at the initial marking")
	}

	next, ok := m.Fire(t1, mk)
	if !ok {
		t.Fatal("Fire(T1) should succeed")
	}
	p2, _ := m.PlaceIndex("P2")
	if next[p1] != 0 || next[p2] != 1 {
		t.Fatalf("unexpected marking after firing T1: %v", next)
	}
	// original marking must be untouched
	if mk[p1] != 1 {
		t.Fatal("Fire must not mutate its input marking")
	}
}

func TestBuilder_EmptyModel(t *testing.T) {
	m, err := Build().Build()
	if err != nil {
		t.Fatalf("empty model should build: %v", err)
	}
	if m.NumPlaces() != 0 || m.NumTransitions() != 0 {
		t.Fatal("expected empty model")
	}
}

func TestBuilder_DuplicatePlace(t *testing.T) {
	_, err := Build().Place("P1", 0).Place("P1", 1).Build()
	if !errors.Is(err, ErrDuplicatePlaceID) {
		t.Fatalf("expected ErrDuplicatePlaceID, got %v", err)
	}
}

func TestBuilder_DuplicateTransition(t *testing.T) {
	_, err := Build().Transition("T1").Transition("T1").Build()
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("expected ErrDuplicateTransition, got %v", err)
	}
}

func TestBuilder_NonBipartiteArc(t *testing.T) {
	_, err := Build().Place("P1", 0).Place("P2", 0).Arc("P1", "P2", 1).Build()
	if !errors.Is(err, ErrNonBipartiteArc) {
		t.Fatalf("expected ErrNonBipartiteArc, got %v", err)
	}
}

func TestBuilder_UnknownEndpoint(t *testing.T) {
	_, err := Build().Place("P1", 0).Arc("P1", "T1", 1).Build()
	if !errors.Is(err, ErrUnknownArcEndpoint) {
		t.Fatalf("expected ErrUnknownArcEndpoint, got %v", err)
	}
}

func TestBuilder_ZeroWeight(t *testing.T) {
	_, err := Build().Place("P1", 0).Transition("T1").Arc("P1", "T1", 0).Build()
	if !errors.Is(err, ErrZeroWeight) {
		t.Fatalf("expected ErrZeroWeight, got %v", err)
	}
}

func TestBuilder_CapacityExceeded(t *testing.T) {
	_, err := Build().PlaceWithCapacity("P1", 5, 3).Build()
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestBuilder_DuplicateArcCollapses(t *testing.T) {
	m, err := Build().
		Place("P1", 0).Transition("T1").
		Arc("P1", "T1", 1).
		Arc("P1", "T1", 3).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Arcs()) != 1 {
		t.Fatalf("expected a single collapsed arc, got %d", len(m.Arcs()))
	}
	p1, _ := m.PlaceIndex("P1")
	t1, _ := m.TransIndex("T1")
	w, _ := m.ArcWeight(p1, t1)
	if w != 3 {
		t.Fatalf("expected collapsed weight 3, got %d", w)
	}
}

func TestBuilder_AnyOrder(t *testing.T) {
	// Arcs may be added before the places/transitions they reference exist.
	m, err := Build().
		Arc("P1", "T1", 2).
		Place("P1", 4).
		Transition("T1").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p1, _ := m.PlaceIndex("P1")
	t1, _ := m.TransIndex("T1")
	w, ok := m.ArcWeight(p1, t1)
	if !ok || w != 2 {
		t.Fatalf("ArcWeight = %d, %v", w, ok)
	}
}
