package petri

import "fmt"

type rawArc struct {
	source, target string
	weight          uint64
}

// Builder provides a fluent API for constructing a Model. Places,
// transitions and arcs may be added in any order; identifiers are resolved
// and every structural invariant is checked when Build is called.
//
// Example:
//
//	model, err := petri.Build().
//	    Place("P1", 1).
//	    Place("P2", 0).
//	    Transition("T1").
//	    Transition("T2").
//	    Arc("P1", "T1", 1).
//	    Arc("T1", "P2", 1).
//	    Arc("P2", "T2", 1).
//	    Arc("T2", "P1", 1).
//	    Build()
type Builder struct {
	places      []Place
	transitions []Transition
	arcs        []rawArc
}

// Build starts a new Builder.
func Build() *Builder { return &Builder{} }

// NewBuilder is an alias for Build, for callers that prefer a constructor name.
func NewBuilder() *Builder { return Build() }

// Place adds a place with the given id (used as both ID and Name) and
// initial token count.
func (b *Builder) Place(id string, tokens uint64) *Builder {
	b.places = append(b.places, Place{ID: id, Name: id, Tokens: tokens})
	return b
}

// PlaceNamed adds a place with a separate display name.
func (b *Builder) PlaceNamed(id, name string, tokens uint64) *Builder {
	b.places = append(b.places, Place{ID: id, Name: name, Tokens: tokens})
	return b
}

// PlaceWithCapacity adds a place with a token capacity.
func (b *Builder) PlaceWithCapacity(id string, tokens, capacity uint64) *Builder {
	c := capacity
	b.places = append(b.places, Place{ID: id, Name: id, Tokens: tokens, Capacity: &c})
	return b
}

// AddPlaceCapacity adds a place, carrying over an existing nil-or-not capacity pointer.
func (b *Builder) AddPlaceCapacity(id, name string, tokens uint64, capacity *uint64) *Builder {
	var c *uint64
	if capacity != nil {
		v := *capacity
		c = &v
	}
	b.places = append(b.places, Place{ID: id, Name: name, Tokens: tokens, Capacity: c})
	return b
}

// Transition adds a transition with the given id and Immediate kind.
func (b *Builder) Transition(id string) *Builder {
	b.transitions = append(b.transitions, Transition{ID: id, Name: id, Kind: Immediate})
	return b
}

// TransitionWithKind adds a transition with an explicit classification.
func (b *Builder) TransitionWithKind(id string, kind TransitionKind) *Builder {
	b.transitions = append(b.transitions, Transition{ID: id, Name: id, Kind: kind})
	return b
}

// TransitionWithPriority adds a transition carrying a fairness priority hint.
func (b *Builder) TransitionWithPriority(id string, kind TransitionKind, priority int) *Builder {
	p := priority
	b.transitions = append(b.transitions, Transition{ID: id, Name: id, Kind: kind, Priority: &p})
	return b
}

// AddTransitionFull adds a transition, carrying over an existing priority pointer.
func (b *Builder) AddTransitionFull(id, name string, kind TransitionKind, priority *int) *Builder {
	var p *int
	if priority != nil {
		v := *priority
		p = &v
	}
	b.transitions = append(b.transitions, Transition{ID: id, Name: name, Kind: kind, Priority: p})
	return b
}

// Arc adds an arc between source and target with the given weight. One
// endpoint must be a place id and the other a transition id; which is
// which is resolved at Build time so arcs may be added before or after
// their endpoints.
func (b *Builder) Arc(source, target string, weight uint64) *Builder {
	b.arcs = append(b.arcs, rawArc{source: source, target: target, weight: weight})
	return b
}

// Build validates and assembles the accumulated places, transitions and
// arcs into an immutable Model.
func (b *Builder) Build() (*Model, error) {
	m := &Model{
		placeIndex: make(map[string]int, len(b.places)),
		transIndex: make(map[string]int, len(b.transitions)),
		p2tWeight:  make(map[[2]int]uint64),
		t2pWeight:  make(map[[2]int]uint64),
	}

	for _, p := range b.places {
		if p.ID == "" {
			return nil, ErrEmptyID
		}
		if _, dup := m.placeIndex[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlaceID, p.ID)
		}
		if p.Capacity != nil && p.Tokens > *p.Capacity {
			return nil, fmt.Errorf("%w: place %q has %d tokens, capacity %d", ErrCapacityExceeded, p.ID, p.Tokens, *p.Capacity)
		}
		m.placeIndex[p.ID] = len(m.places)
		m.places = append(m.places, p)
	}

	for _, t := range b.transitions {
		if t.ID == "" {
			return nil, ErrEmptyID
		}
		if _, dup := m.transIndex[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTransition, t.ID)
		}
		m.transIndex[t.ID] = len(m.transitions)
		m.transitions = append(m.transitions, t)
	}

	m.placeInputs = make([][]int, len(m.places))
	m.placeOutputs = make([][]int, len(m.places))
	m.transInputs = make([][]int, len(m.transitions))
	m.transOutputs = make([][]int, len(m.transitions))

	// seen preserves first-seen arc order; a later arc with the same
	// endpoints collapses into the earlier one, replacing its weight.
	type key struct{ src, dst string }
	seen := make(map[key]int) // index into m.arcs
	for _, ra := range b.arcs {
		if ra.weight == 0 {
			return nil, fmt.Errorf("%w: %q -> %q", ErrZeroWeight, ra.source, ra.target)
		}
		pIdx, srcIsPlace := m.placeIndex[ra.source]
		tIdx, srcIsTrans := m.transIndex[ra.source]
		dstPIdx, dstIsPlace := m.placeIndex[ra.target]
		dstTIdx, dstIsTrans := m.transIndex[ra.target]

		var source, target NodeRef
		var p2t bool
		var srcP, dstT, srcT, dstP int
		switch {
		case srcIsPlace && dstIsTrans:
			source, target = PlaceRef(ra.source), TransRef(ra.target)
			p2t = true
			srcP, dstT = pIdx, dstTIdx
		case srcIsTrans && dstIsPlace:
			source, target = TransRef(ra.source), PlaceRef(ra.target)
			p2t = false
			srcT, dstP = tIdx, dstPIdx
		case (srcIsPlace && dstIsPlace) || (srcIsTrans && dstIsTrans):
			return nil, fmt.Errorf("%w: %q -> %q", ErrNonBipartiteArc, ra.source, ra.target)
		default:
			return nil, fmt.Errorf("%w: %q -> %q", ErrUnknownArcEndpoint, ra.source, ra.target)
		}

		k := key{ra.source, ra.target}
		if idx, dup := seen[k]; dup {
			m.arcs[idx].Weight = ra.weight
			if p2t {
				m.p2tWeight[[2]int{srcP, dstT}] = ra.weight
			} else {
				m.t2pWeight[[2]int{srcT, dstP}] = ra.weight
			}
			continue
		}
		seen[k] = len(m.arcs)
		m.arcs = append(m.arcs, Arc{Source: source, Target: target, Weight: ra.weight})
		if p2t {
			m.p2tWeight[[2]int{srcP, dstT}] = ra.weight
			m.placeOutputs[srcP] = append(m.placeOutputs[srcP], dstT)
			m.transInputs[dstT] = append(m.transInputs[dstT], srcP)
		} else {
			m.t2pWeight[[2]int{srcT, dstP}] = ra.weight
			m.placeInputs[dstP] = append(m.placeInputs[dstP], srcT)
			m.transOutputs[srcT] = append(m.transOutputs[srcT], dstP)
		}
	}

	return m, nil
}

// MustBuild is Build's panicking counterpart, for tests and constants
// where a validation failure indicates a programming error.
func (b *Builder) MustBuild() *Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
