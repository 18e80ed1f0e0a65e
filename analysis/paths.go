package analysis

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/shypn/topology/petri"
)

// PathAnalyzer computes shortest paths in the bipartite place/transition
// graph, grounded on graph/path's Dijkstra implementation.
type PathAnalyzer struct {
	base
}

var pathOptions = []string{"from", "to"}

// NewPathAnalyzer builds a path analyzer over model.
func NewPathAnalyzer(model *petri.Model) *PathAnalyzer {
	return &PathAnalyzer{base: newBase(model, false)}
}

// Analyze computes the shortest path between two nodes. Recognized
// options: from, to (both required place or transition ids).
func (a *PathAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, pathOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	params := optionParams(options)
	m := a.model
	fromID := options.StringOr("from", "")
	toID := options.StringOr("to", "")

	if fromID == "" || toID == "" {
		r := failure("invalid options", fmt.Errorf("%w: from and to are required", ErrInvalidOption))
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	if m.NumPlaces() == 0 && m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no graph to search for paths", map[string]any{
			"found": false,
			"path":  []string{},
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	bg := buildBipartite(m)
	fromRef, ok := resolveRef(m, fromID)
	if !ok {
		r := failure("invalid options", fmt.Errorf("%w: unknown node %q", ErrInvalidOption, fromID))
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}
	toRef, ok := resolveRef(m, toID)
	if !ok {
		r := failure("invalid options", fmt.Errorf("%w: unknown node %q", ErrInvalidOption, toID))
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	fromNode := nodeID(m, bg.numPlaces, fromRef)
	toNode := nodeID(m, bg.numPlaces, toRef)

	shortest := path.DijkstraFrom(simple.Node(fromNode), bg.g)
	nodes, weight := shortest.To(toNode)

	if len(nodes) == 0 {
		r := &Result{
			Success: true,
			Data:    map[string]any{"found": false, "path": []string{}},
			Summary: fmt.Sprintf("no path from %q to %q", fromID, toID),
		}
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	names := make([]string, len(nodes))
	kinds := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = bg.nodeName(m, n.ID())
		kinds[i] = bg.nodeType(n.ID())
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"found":  true,
			"path":   names,
			"kinds":  kinds,
			"weight": weight,
			"hops":   len(names) - 1,
		},
		Summary: fmt.Sprintf("shortest path from %q to %q has %d hop(s)", fromID, toID, len(names)-1),
	}
	r = finalize(start, params, len(names), r)
	a.store(k, r)
	return r, nil
}

// FindShortestPath is a named wrapper over Analyze's default shortest-path
// mode.
func (a *PathAnalyzer) FindShortestPath(ctx context.Context, from, to string) (*Result, error) {
	return a.Analyze(ctx, Options{"from": from, "to": to})
}

// FindAllPaths enumerates simple paths from "from" to "to" via bounded DFS,
// up to maxPaths results and maxLength hops.
func (a *PathAnalyzer) FindAllPaths(ctx context.Context, from, to string, maxPaths, maxLength int) (*Result, error) {
	start := time.Now()
	m := a.model
	if maxPaths <= 0 {
		maxPaths = 100
	}
	if maxLength <= 0 {
		maxLength = 20
	}

	fromRef, ok := resolveRef(m, from)
	if !ok {
		return finalize(start, nil, 0, failure("invalid options", fmt.Errorf("%w: unknown node %q", ErrInvalidOption, from))), nil
	}
	toRef, ok := resolveRef(m, to)
	if !ok {
		return finalize(start, nil, 0, failure("invalid options", fmt.Errorf("%w: unknown node %q", ErrInvalidOption, to))), nil
	}

	bg := buildBipartite(m)
	fromNode := nodeID(m, bg.numPlaces, fromRef)
	toNode := nodeID(m, bg.numPlaces, toRef)

	var paths [][]string
	visited := map[int64]bool{fromNode: true}
	var cur []string
	var walk func(node int64)
	walk = func(node int64) {
		if len(paths) >= maxPaths || len(cur) > maxLength {
			return
		}
		cur = append(cur, bg.nodeName(m, node))
		if node == toNode && len(cur) > 1 {
			pathCopy := make([]string, len(cur))
			copy(pathCopy, cur)
			paths = append(paths, pathCopy)
		} else {
			to := bg.g.From(node)
			for to.Next() {
				next := to.Node().ID()
				if !visited[next] {
					visited[next] = true
					walk(next)
					visited[next] = false
				}
			}
		}
		cur = cur[:len(cur)-1]
	}
	walk(fromNode)

	shortestLen, longestLen, total := -1, 0, 0
	for _, p := range paths {
		hops := len(p) - 1
		if shortestLen == -1 || hops < shortestLen {
			shortestLen = hops
		}
		if hops > longestLen {
			longestLen = hops
		}
		total += hops
	}
	avg := 0.0
	if len(paths) > 0 {
		avg = float64(total) / float64(len(paths))
	}
	if shortestLen == -1 {
		shortestLen = 0
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"paths":              paths,
			"pathCount":          len(paths),
			"shortestPathLength": shortestLen,
			"longestPathLength":  longestLen,
			"averagePathLength":  avg,
		},
		Summary: fmt.Sprintf("found %d path(s) from %q to %q", len(paths), from, to),
	}
	return finalize(start, nil, len(paths), r), nil
}

// FindPathsThroughNode reports every shortest path (over up to maxPaths
// distinct source/target pairs drawn from the model's nodes) that transits
// node.
func (a *PathAnalyzer) FindPathsThroughNode(ctx context.Context, node string, maxPaths int) (*Result, error) {
	start := time.Now()
	m := a.model
	if maxPaths <= 0 {
		maxPaths = 100
	}
	if _, ok := resolveRef(m, node); !ok {
		return finalize(start, nil, 0, failure("invalid options", fmt.Errorf("%w: unknown node %q", ErrInvalidOption, node))), nil
	}

	var ids []string
	for _, p := range m.Places() {
		ids = append(ids, p.ID)
	}
	for _, t := range m.Transitions() {
		ids = append(ids, t.ID)
	}

	var transiting []map[string]any
	for _, from := range ids {
		for _, to := range ids {
			if from == to || len(transiting) >= maxPaths {
				continue
			}
			r, err := a.Analyze(ctx, Options{"from": from, "to": to})
			if err != nil || !r.Success || r.Get("found", false) != true {
				continue
			}
			names, _ := r.Data["path"].([]string)
			if len(names) < 3 {
				continue
			}
			for _, n := range names[1 : len(names)-1] {
				if n == node {
					transiting = append(transiting, map[string]any{"from": from, "to": to, "path": names})
					break
				}
			}
		}
	}

	r := &Result{
		Success: true,
		Data:    map[string]any{"paths": transiting, "count": len(transiting)},
		Summary: fmt.Sprintf("found %d path(s) transiting %q", len(transiting), node),
	}
	return finalize(start, nil, len(transiting), r), nil
}

// NetworkMetrics reports graph-wide statistics over the bipartite place/
// transition graph: diameter (over the largest strongly connected
// component when the graph itself isn't strongly connected), average
// shortest-path length, strong connectivity, and node/edge counts.
func (a *PathAnalyzer) NetworkMetrics(ctx context.Context) (*Result, error) {
	start := time.Now()
	m := a.model
	bg := buildBipartite(m)

	nodeCount := bg.numPlaces + bg.numTrans
	edgeCount := len(m.Arcs())

	sccs := topo.TarjanSCC(bg.g)
	largest := []int64{}
	for _, comp := range sccs {
		if len(comp) > len(largest) {
			ids := make([]int64, len(comp))
			for i, n := range comp {
				ids[i] = n.ID()
			}
			largest = ids
		}
	}
	stronglyConnected := nodeCount > 0 && len(sccs) == 1

	diameter := 0
	var total, pairs int
	for _, from := range largest {
		shortest := path.DijkstraFrom(simple.Node(from), bg.g)
		for _, to := range largest {
			if from == to {
				continue
			}
			nodes, weight := shortest.To(to)
			if len(nodes) == 0 {
				continue
			}
			if int(weight) > diameter {
				diameter = int(weight)
			}
			total += int(weight)
			pairs++
		}
	}
	avgLen := 0.0
	if pairs > 0 {
		avgLen = float64(total) / float64(pairs)
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"diameter":            diameter,
			"averagePathLength":   avgLen,
			"isStronglyConnected": stronglyConnected,
			"nodeCount":           nodeCount,
			"edgeCount":           edgeCount,
		},
		Summary: fmt.Sprintf("diameter=%d over %d node(s)", diameter, nodeCount),
	}
	return finalize(start, nil, nodeCount, r), nil
}

func resolveRef(m *petri.Model, id string) (petri.NodeRef, bool) {
	if _, ok := m.PlaceIndex(id); ok {
		return petri.PlaceRef(id), true
	}
	if _, ok := m.TransIndex(id); ok {
		return petri.TransRef(id), true
	}
	return petri.NodeRef{}, false
}
