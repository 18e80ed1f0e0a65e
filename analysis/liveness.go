package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/shypn/topology/petri"
)

// LivenessLevel classifies how reliably a transition can still fire,
// following the standard L0-L4 hierarchy (dead, fireable once, fireable
// arbitrarily often, fireable infinitely often along some run, live from
// every reachable marking).
type LivenessLevel int

const (
	L0 LivenessLevel = iota
	L1
	L2
	L3
	L4
)

func (l LivenessLevel) String() string {
	switch l {
	case L0:
		return "L0"
	case L1:
		return "L1"
	case L2:
		return "L2"
	case L3:
		return "L3"
	case L4:
		return "L4"
	default:
		return "unknown"
	}
}

// TransitionLivenessRecord reports one transition's liveness level.
type TransitionLivenessRecord struct {
	Transition string `json:"transition"`
	Level      string `json:"level"`
}

// LivenessAnalyzer classifies every transition's liveness over the bounded
// reachable state graph. The deadlock analyzer, when present, is consulted
// only to add a warning if a reachable deadlock exists; its result does not
// change any transition's level.
type LivenessAnalyzer struct {
	base
	deadlocks *DeadlockAnalyzer
}

var livenessOptions = []string{"max_states"}

// NewLivenessAnalyzer builds a liveness analyzer over model. deadlocks may
// be nil; it is used only for the reachable-deadlock warning.
func NewLivenessAnalyzer(model *petri.Model, deadlocks *DeadlockAnalyzer) *LivenessAnalyzer {
	return &LivenessAnalyzer{base: newBase(model, true), deadlocks: deadlocks}
}

type livenessEdge struct {
	from, to int64
	trans    int
}

// Analyze classifies every transition's liveness level. Recognized
// options: max_states (default 10000). L2 and L3 coincide whenever the
// search completes without truncation: inside a bounded, fully explored
// reachability graph, any state lying on a cycle that enables t supports
// both "fires arbitrarily often" and "fires infinitely often along some
// run" (the cycle can simply be repeated forever). On a truncated search,
// the weaker L2 is reported and a warning notes L3/L4 may be
// underestimated.
func (a *LivenessAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, livenessOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	maxStates := options.IntOr("max_states", defaultMaxStates)
	params := optionParams(options)
	m := a.model

	if m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no transitions to classify", map[string]any{
			"levels":          []TransitionLivenessRecord{},
			"overallLevel":    "L4",
			"livenessLevels":  map[string]string{},
			"deadTransitions": []string{},
			"liveTransitions": []string{},
			"isLive":          true,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	states := []petri.Marking{m.CurrentMarking()}
	visited := map[uint64]int64{states[0].Hash(): 0}
	g := simple.NewDirectedGraph()
	g.AddNode(simple.Node(0))
	var edges []livenessEdge
	enabledAnywhere := make([]bool, m.NumTransitions())

	queue := []int64{0}
	truncated := false
	iter := 0
	for len(queue) > 0 {
		iter++
		if ctxDone(ctx, iter) {
			truncated = true
			break
		}
		curID := queue[0]
		queue = queue[1:]
		cur := states[curID]
		for _, t := range m.EnabledTransitions(cur) {
			enabledAnywhere[t] = true
			next, ok := m.Fire(t, cur)
			if !ok {
				continue
			}
			h := next.Hash()
			nid, seen := visited[h]
			if !seen {
				if len(states) >= maxStates {
					truncated = true
					continue
				}
				nid = int64(len(states))
				visited[h] = nid
				states = append(states, next)
				g.AddNode(simple.Node(nid))
				queue = append(queue, nid)
			}
			// simple.DirectedGraph rejects self edges; firings that leave
			// the marking unchanged are kept only in edges (see below).
			if curID != nid && !g.HasEdgeFromTo(curID, nid) {
				g.SetEdge(simple.Edge{F: simple.Node(curID), T: simple.Node(nid)})
			}
			edges = append(edges, livenessEdge{from: curID, to: nid, trans: t})
		}
	}

	sccs := topo.TarjanSCC(g)
	compOf := make(map[int64]int, len(states))
	for i, comp := range sccs {
		for _, n := range comp {
			compOf[n.ID()] = i
		}
	}
	terminal := make([]bool, len(sccs))
	for i := range sccs {
		terminal[i] = true
	}
	nonTrivial := make([]bool, len(sccs))
	for i, comp := range sccs {
		if len(comp) > 1 {
			nonTrivial[i] = true
		}
	}
	for _, e := range edges {
		cf, ct := compOf[e.from], compOf[e.to]
		if cf != ct {
			terminal[cf] = false
		} else if e.from == e.to {
			nonTrivial[cf] = true
		}
	}

	enabledInSCC := make([]map[int]bool, len(sccs))
	for i, comp := range sccs {
		enabledInSCC[i] = make(map[int]bool)
		for _, n := range comp {
			for _, t := range m.EnabledTransitions(states[n.ID()]) {
				enabledInSCC[i][t] = true
			}
		}
	}

	levels := make([]LivenessLevel, m.NumTransitions())
	for t := 0; t < m.NumTransitions(); t++ {
		if !enabledAnywhere[t] {
			levels[t] = L0
			continue
		}
		levels[t] = L1

		onCycle := false
		for i := range sccs {
			if nonTrivial[i] && enabledInSCC[i][t] {
				onCycle = true
				break
			}
		}
		if onCycle {
			levels[t] = L2
			if !truncated {
				levels[t] = L3
			}
		}

		fullyLive := len(sccs) > 0
		for i := range sccs {
			if terminal[i] && !enabledInSCC[i][t] {
				fullyLive = false
				break
			}
		}
		if fullyLive {
			levels[t] = L4
		}
	}

	records := make([]TransitionLivenessRecord, m.NumTransitions())
	levelsByName := make(map[string]string, m.NumTransitions())
	var deadTransitions, liveTransitions []string
	overall := L4
	for t := 0; t < m.NumTransitions(); t++ {
		id := m.TransID(t)
		records[t] = TransitionLivenessRecord{Transition: id, Level: levels[t].String()}
		levelsByName[id] = levels[t].String()
		if levels[t] < overall {
			overall = levels[t]
		}
		if levels[t] == L0 {
			deadTransitions = append(deadTransitions, id)
		}
		if levels[t] == L3 || levels[t] == L4 {
			liveTransitions = append(liveTransitions, id)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Transition < records[j].Transition })
	sort.Strings(deadTransitions)
	sort.Strings(liveTransitions)
	isLive := len(liveTransitions) == m.NumTransitions()

	var warnings []string
	if truncated {
		warnings = append(warnings, fmt.Sprintf("search truncated at %d states: L2/L3/L4 classifications may be underestimates", maxStates))
	}
	if a.deadlocks != nil {
		dr, err := a.deadlocks.Analyze(ctx, nil)
		if err == nil && dr.Success && dr.Get("hasDeadlock", false) == true {
			warnings = append(warnings, "model has a reachable deadlock: no transition is truly L4-live from every reachable marking within the terminal dead state")
		}
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"levels":          records,
			"overallLevel":    overall.String(),
			"livenessLevels":  levelsByName,
			"deadTransitions": deadTransitions,
			"liveTransitions": liveTransitions,
			"isLive":          isLive,
		},
		Summary:  fmt.Sprintf("overall liveness level %s across %d transition(s)", overall, m.NumTransitions()),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}
