package petri

import "testing"

func TestModel_StructuralHashStableAcrossBuilds(t *testing.T) {
	build := func() *Model {
		return Build().
			Place("P1", 1).Place("P2", 0).
			Transition("T1").Transition("T2").
			Arc("P1", "T1", 1).Arc("T1", "P2", 1).
			Arc("P2", "T2", 1).Arc("T2", "P1", 1).
			MustBuild()
	}
	a, b := build(), build()
	if a.StructuralHash() != b.StructuralHash() {
		t.Fatal("two builds of the same net must hash identically")
	}
}

func TestModel_StructuralHashIgnoresMarking(t *testing.T) {
	a := Build().Place("P1", 1).MustBuild()
	b := Build().Place("P1", 5).MustBuild()
	if a.StructuralHash() != b.StructuralHash() {
		t.Fatal("StructuralHash must not depend on token counts")
	}
	if a.MarkingHash() == b.MarkingHash() {
		t.Fatal("MarkingHash must distinguish different markings")
	}
}

func TestModel_StructuralHashChangesOnTopologyEdit(t *testing.T) {
	a := Build().Place("P1", 0).Transition("T1").Arc("P1", "T1", 1).MustBuild()
	b := Build().Place("P1", 0).Transition("T1").Arc("P1", "T1", 2).MustBuild()
	if a.StructuralHash() == b.StructuralHash() {
		t.Fatal("different arc weights must produce different structural hashes")
	}
}

func TestModel_Reverse(t *testing.T) {
	m := twoPlaceCycle(t)
	r := m.Reverse()

	p1, _ := m.PlaceIndex("P1")
	t1, _ := m.TransIndex("T1")
	// In the original, P1 -> T1. In the reverse, T1 -> P1.
	if _, ok := r.ArcWeight(p1, t1); ok {
		t.Fatal("reversed model should not have P1 -> T1")
	}
	if w, ok := r.ArcWeightOut(t1, p1); !ok || w != 1 {
		t.Fatalf("reversed model should have T1 -> P1 weight 1, got %d, %v", w, ok)
	}
}

func TestModel_PresetPostset(t *testing.T) {
	m := twoPlaceCycle(t)
	p1, _ := m.PlaceIndex("P1")
	t1, _ := m.TransIndex("T1")
	t2, _ := m.TransIndex("T2")

	// •P1 = {T2} (T2 -> P1), P1• = {T1} (P1 -> T1).
	if got := m.PlaceInputs(p1); len(got) != 1 || got[0] != t2 {
		t.Fatalf("PlaceInputs(P1) = %v, want [%d]", got, t2)
	}
	if got := m.PlaceOutputs(p1); len(got) != 1 || got[0] != t1 {
		t.Fatalf("PlaceOutputs(P1) = %v, want [%d]", got, t1)
	}
}

func TestModel_IncidenceMatrixBalanced(t *testing.T) {
	m := twoPlaceCycle(t)
	c := m.IncidenceMatrix()
	rows, cols := c.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("expected 2x2 incidence matrix, got %dx%d", rows, cols)
	}
	// Each transition consumes one token from one place and produces one
	// token in another: every column sums to zero (token-conserving net).
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += c.At(i, j)
		}
		if sum != 0 {
			t.Fatalf("column %d does not sum to zero: %v", j, sum)
		}
	}
}

func TestMarking_CoversAndDiff(t *testing.T) {
	a := Marking{3, 1}
	b := Marking{2, 1}
	if !a.Covers(b) {
		t.Fatal("a should cover b")
	}
	if !a.StrictlyCovers(b) {
		t.Fatal("a should strictly cover b")
	}
	if b.StrictlyCovers(a) {
		t.Fatal("b should not strictly cover a")
	}
	diff := a.Diff(b)
	if diff[0] != 1 || diff[1] != 0 {
		t.Fatalf("unexpected diff: %v", diff)
	}
}

func TestMarking_HashDeterministic(t *testing.T) {
	a := Marking{1, 2, 3}
	b := Marking{1, 2, 3}
	if a.Hash() != b.Hash() {
		t.Fatal("equal markings must hash equally")
	}
	c := Marking{1, 2, 4}
	if a.Hash() == c.Hash() {
		t.Fatal("different markings should (overwhelmingly likely) hash differently")
	}
}
