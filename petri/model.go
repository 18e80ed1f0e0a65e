// Package petri implements the core Petri net data model: an immutable
// snapshot of places, transitions and weighted arcs, with deterministic
// iteration order and the index/preset/postset lookups every analyzer in
// the analysis package needs.
package petri

import (
	"fmt"
	"hash/fnv"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// TransitionKind classifies a transition. Most analyzers treat it as
// opaque; only the fairness analyzer inspects Priority.
type TransitionKind int

const (
	Immediate TransitionKind = iota
	Timed
	Stochastic
	Continuous
)

func (k TransitionKind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case Timed:
		return "timed"
	case Stochastic:
		return "stochastic"
	case Continuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// Place is a token-holding node. Tokens is the current marking value;
// analyzers never mutate it. Capacity is nil when the place is unbounded.
type Place struct {
	ID       string
	Name     string
	Tokens   uint64
	Capacity *uint64
}

// Transition is an event node.
type Transition struct {
	ID       string
	Name     string
	Kind     TransitionKind
	Priority *int // optional fairness hint; nil means no priority assigned
}

// NodeKind tags a NodeRef as a place or a transition, replacing the
// attribute-sniffing the original source used to tell them apart.
type NodeKind int

const (
	PlaceKind NodeKind = iota
	TransKind
)

// NodeRef identifies either a place or a transition by id.
type NodeRef struct {
	Kind NodeKind
	ID   string
}

// PlaceRef builds a NodeRef that refers to a place.
func PlaceRef(id string) NodeRef { return NodeRef{Kind: PlaceKind, ID: id} }

// TransRef builds a NodeRef that refers to a transition.
func TransRef(id string) NodeRef { return NodeRef{Kind: TransKind, ID: id} }

// Arc is a weighted directed edge between a place and a transition (in
// either direction). Source and Target are resolved NodeRefs; exactly one
// is a place and the other a transition.
type Arc struct {
	Source NodeRef
	Target NodeRef
	Weight uint64
}

// Model is an immutable snapshot of a Petri net: ordered places and
// transitions, their index lookups, precomputed presets/postsets, and a
// lazily cached incidence matrix. Once built, a Model is read-only and may
// be shared by reference among any number of analyzers.
type Model struct {
	places      []Place
	transitions []Transition
	arcs        []Arc

	placeIndex map[string]int
	transIndex map[string]int

	// placeInputs[p] holds transition indices t such that t->p is an arc
	// (the preset •p). placeOutputs[p] holds transition indices t such
	// that p->t is an arc (the postset p•). transInputs/transOutputs are
	// the transition-centric duals (•t, t•).
	placeInputs  [][]int
	placeOutputs [][]int
	transInputs  [][]int
	transOutputs [][]int

	// Arc weights, one map per direction, each keyed by the endpoint
	// indices in the direction the arc actually runs.
	p2tWeight map[[2]int]uint64 // (placeIdx, transIdx): place -> transition
	t2pWeight map[[2]int]uint64 // (transIdx, placeIdx): transition -> place

	mu             sync.Mutex
	incidence      *mat.Dense
	structuralHash uint64
	hashComputed   bool
}

// Places returns the places in stable, reproducible insertion order.
func (m *Model) Places() []Place { return m.places }

// Transitions returns the transitions in stable, reproducible insertion order.
func (m *Model) Transitions() []Transition { return m.transitions }

// Arcs returns the arcs in stable, reproducible insertion order.
func (m *Model) Arcs() []Arc { return m.arcs }

// PlaceIndex returns the index of a place id, if present.
func (m *Model) PlaceIndex(id string) (int, bool) {
	i, ok := m.placeIndex[id]
	return i, ok
}

// TransIndex returns the index of a transition id, if present.
func (m *Model) TransIndex(id string) (int, bool) {
	i, ok := m.transIndex[id]
	return i, ok
}

// PlaceInputs returns the indices of transitions in the preset of place i (•p).
func (m *Model) PlaceInputs(i int) []int { return m.placeInputs[i] }

// PlaceOutputs returns the indices of transitions in the postset of place i (p•).
func (m *Model) PlaceOutputs(i int) []int { return m.placeOutputs[i] }

// TransInputs returns the indices of places in the preset of transition i (•t).
func (m *Model) TransInputs(i int) []int { return m.transInputs[i] }

// TransOutputs returns the indices of places in the postset of transition i (t•).
func (m *Model) TransOutputs(i int) []int { return m.transOutputs[i] }

// ArcWeight returns the weight of the arc place->transition, if one exists.
func (m *Model) ArcWeight(placeIdx, transIdx int) (uint64, bool) {
	w, ok := m.p2tWeight[[2]int{placeIdx, transIdx}]
	return w, ok
}

// ArcWeightOut returns the weight of the arc transition->place, if one exists.
func (m *Model) ArcWeightOut(transIdx, placeIdx int) (uint64, bool) {
	w, ok := m.t2pWeight[[2]int{transIdx, placeIdx}]
	return w, ok
}

// NumPlaces returns the number of places.
func (m *Model) NumPlaces() int { return len(m.places) }

// NumTransitions returns the number of transitions.
func (m *Model) NumTransitions() int { return len(m.transitions) }

// CurrentMarking derives a Marking from the places' current Tokens field.
func (m *Model) CurrentMarking() Marking {
	mk := make(Marking, len(m.places))
	for i, p := range m.places {
		mk[i] = p.Tokens
	}
	return mk
}

// IncidenceMatrix returns C where C[p][t] = weight(t->p) - weight(p->t),
// computing and caching it on first use.
func (m *Model) IncidenceMatrix() *mat.Dense {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incidence != nil {
		return m.incidence
	}
	rows, cols := len(m.places), len(m.transitions)
	c := mat.NewDense(rows, cols, nil)
	for key, w := range m.t2pWeight {
		t, p := key[0], key[1]
		c.Set(p, t, c.At(p, t)+float64(w))
	}
	for key, w := range m.p2tWeight {
		p, t := key[0], key[1]
		c.Set(p, t, c.At(p, t)-float64(w))
	}
	m.incidence = c
	return c
}

// StructuralHash is a non-cryptographic FNV-1a hash over places,
// transitions, and arcs/weights — everything but the current marking.
// Two models with equal StructuralHash are structurally interchangeable
// for every analyzer cache in the analysis package.
func (m *Model) StructuralHash() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashComputed {
		return m.structuralHash
	}
	h := fnv.New64a()
	for _, p := range m.places {
		cap := "nil"
		if p.Capacity != nil {
			cap = fmt.Sprintf("%d", *p.Capacity)
		}
		fmt.Fprintf(h, "P|%s|%s|%s;", p.ID, p.Name, cap)
	}
	for _, t := range m.transitions {
		prio := "nil"
		if t.Priority != nil {
			prio = fmt.Sprintf("%d", *t.Priority)
		}
		fmt.Fprintf(h, "T|%s|%s|%d|%s;", t.ID, t.Name, t.Kind, prio)
	}
	for _, a := range m.arcs {
		fmt.Fprintf(h, "A|%d:%s|%d:%s|%d;", a.Source.Kind, a.Source.ID, a.Target.Kind, a.Target.ID, a.Weight)
	}
	m.structuralHash = h.Sum64()
	m.hashComputed = true
	return m.structuralHash
}

// MarkingHash hashes the current marking alone. Behavioral analyzers whose
// cache must also vary with the marking (not just the structural hash)
// combine both in their cache key.
func (m *Model) MarkingHash() uint64 {
	h := fnv.New64a()
	for _, p := range m.places {
		fmt.Fprintf(h, "%d;", p.Tokens)
	}
	return h.Sum64()
}

// Reverse builds a new Model with every arc's source and target swapped,
// keeping the same places and transitions and current marking. Used by the
// trap analyzer, by siphon/trap duality: minimal siphons of a net are
// minimal traps of its reverse.
func (m *Model) Reverse() *Model {
	b := NewBuilder()
	for _, p := range m.places {
		b.AddPlaceCapacity(p.ID, p.Name, p.Tokens, p.Capacity)
	}
	for _, t := range m.transitions {
		b.AddTransitionFull(t.ID, t.Name, t.Kind, t.Priority)
	}
	for _, a := range m.arcs {
		b.Arc(a.Target.ID, a.Source.ID, a.Weight)
	}
	rev, err := b.Build()
	if err != nil {
		// Reversing a valid model can never reintroduce an invariant
		// violation: same ids, same bipartite shape, same positive weights.
		panic(fmt.Sprintf("petri: Reverse produced an invalid model: %v", err))
	}
	return rev
}

// IsEnabled reports whether transition t is enabled at marking mk: every
// input place has at least as many tokens as the arc weight demands.
func (m *Model) IsEnabled(t int, mk Marking) bool {
	for _, p := range m.transInputs[t] {
		w, _ := m.ArcWeight(p, t)
		if mk[p] < w {
			return false
		}
	}
	return true
}

// EnabledTransitions returns the indices of all transitions enabled at mk,
// in transition-index order.
func (m *Model) EnabledTransitions(mk Marking) []int {
	var out []int
	for t := range m.transitions {
		if m.IsEnabled(t, mk) {
			out = append(out, t)
		}
	}
	return out
}

// PlaceID returns the identifier of the place at index i.
func (m *Model) PlaceID(i int) string { return m.places[i].ID }

// TransID returns the identifier of the transition at index i.
func (m *Model) TransID(i int) string { return m.transitions[i].ID }

// Fire returns the marking that results from firing transition t at mk,
// and false if t is not enabled. mk is never mutated.
func (m *Model) Fire(t int, mk Marking) (Marking, bool) {
	if !m.IsEnabled(t, mk) {
		return nil, false
	}
	next := mk.Copy()
	for _, p := range m.transInputs[t] {
		w, _ := m.ArcWeight(p, t)
		next[p] -= w
	}
	for _, p := range m.transOutputs[t] {
		w, _ := m.ArcWeightOut(t, p)
		next[p] += w
	}
	return next, true
}
