package analysis

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/shypn/topology/petri"
)

// bipartiteGraph is the directed place/transition graph shared by the
// Cycle and Path analyzers, grounded on
// vanderheijden86-beadwork/pkg/analysis/graph.go's construction of a
// gonum simple.DirectedGraph from a domain model. Node ids: place i maps
// to id i, transition j maps to id numPlaces+j.
type bipartiteGraph struct {
	g         *simple.WeightedDirectedGraph
	numPlaces int
	numTrans  int
}

func buildBipartite(m *petri.Model) *bipartiteGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	np, nt := m.NumPlaces(), m.NumTransitions()
	for i := 0; i < np+nt; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, a := range m.Arcs() {
		from := nodeID(m, np, a.Source)
		to := nodeID(m, np, a.Target)
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(from),
			T: simple.Node(to),
			W: float64(a.Weight),
		})
	}
	return &bipartiteGraph{g: g, numPlaces: np, numTrans: nt}
}

func nodeID(m *petri.Model, numPlaces int, ref petri.NodeRef) int64 {
	if ref.Kind == petri.PlaceKind {
		i, _ := m.PlaceIndex(ref.ID)
		return int64(i)
	}
	j, _ := m.TransIndex(ref.ID)
	return int64(numPlaces + j)
}

// placeNode returns the graph node id for place index i.
func (bg *bipartiteGraph) placeNode(i int) int64 { return int64(i) }

// transNode returns the graph node id for transition index j.
func (bg *bipartiteGraph) transNode(j int) int64 { return int64(bg.numPlaces + j) }

// isPlace reports whether a graph node id refers to a place.
func (bg *bipartiteGraph) isPlace(id int64) bool { return int(id) < bg.numPlaces }

// localIndex returns the place or transition index a graph node id refers to.
func (bg *bipartiteGraph) localIndex(id int64) int {
	if bg.isPlace(id) {
		return int(id)
	}
	return int(id) - bg.numPlaces
}

// nodeName renders a graph node id as the underlying place/transition id.
func (bg *bipartiteGraph) nodeName(m *petri.Model, id int64) string {
	if bg.isPlace(id) {
		return m.PlaceID(bg.localIndex(id))
	}
	return m.TransID(bg.localIndex(id))
}

// nodeDisplayName renders a graph node id as the underlying place/
// transition's human-readable Name (falling back to its ID).
func (bg *bipartiteGraph) nodeDisplayName(m *petri.Model, id int64) string {
	if bg.isPlace(id) {
		p := m.Places()[bg.localIndex(id)]
		if p.Name != "" {
			return p.Name
		}
		return p.ID
	}
	t := m.Transitions()[bg.localIndex(id)]
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// nodeType renders "place" or "transition" for a graph node id.
func (bg *bipartiteGraph) nodeType(id int64) string {
	if bg.isPlace(id) {
		return "place"
	}
	return "transition"
}
