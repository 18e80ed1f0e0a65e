package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shypn/topology/petri"
)

// HubRecord describes one highly connected node in the place/transition
// graph.
type HubRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InDegree       int    `json:"inDegree"`
	OutDegree      int    `json:"outDegree"`
	Degree         int    `json:"degree"`
	WeightedDegree uint64 `json:"weightedDegree"`
}

// HubAnalyzer ranks nodes by total degree, computed directly from the
// model's preset/postset and arc-weight accessors.
type HubAnalyzer struct {
	base
}

var hubOptions = []string{"top_n", "min_degree", "node_type"}

const defaultMinDegree = 3

// NewHubAnalyzer builds a hub analyzer over model.
func NewHubAnalyzer(model *petri.Model) *HubAnalyzer {
	return &HubAnalyzer{base: newBase(model, false)}
}

// Analyze ranks nodes by degree. Recognized options: top_n (default 20),
// min_degree (default 3), node_type ("place", "transition", or "" for both).
func (a *HubAnalyzer) Analyze(ctx context.Context, options Options) (*Result, error) {
	start := time.Now()
	k := a.key(options, hubOptions)
	if r, ok := a.cached(k); ok {
		return r, nil
	}

	topN := options.IntOr("top_n", 20)
	minDegree := options.IntOr("min_degree", defaultMinDegree)
	nodeType := options.StringOr("node_type", "")
	params := optionParams(options)
	m := a.model

	if m.NumPlaces() == 0 && m.NumTransitions() == 0 {
		r := emptyModelResult("empty model: no nodes to rank", map[string]any{
			"hubs":          []HubRecord{},
			"count":         0,
			"hubCount":      0,
			"maxDegree":     0,
			"averageDegree": 0.0,
		})
		r = finalize(start, params, 0, r)
		a.store(k, r)
		return r, nil
	}

	var allNodes []HubRecord
	if nodeType != "transition" {
		for i, p := range m.Places() {
			in := len(m.PlaceInputs(i))
			out := len(m.PlaceOutputs(i))
			var wd uint64
			for _, t := range m.PlaceInputs(i) {
				w, _ := m.ArcWeightOut(t, i)
				wd += w
			}
			for _, t := range m.PlaceOutputs(i) {
				w, _ := m.ArcWeight(i, t)
				wd += w
			}
			allNodes = append(allNodes, HubRecord{ID: p.ID, Name: p.Name, Kind: "place", InDegree: in, OutDegree: out, Degree: in + out, WeightedDegree: wd})
		}
	}
	if nodeType != "place" {
		for j, t := range m.Transitions() {
			in := len(m.TransInputs(j))
			out := len(m.TransOutputs(j))
			var wd uint64
			for _, p := range m.TransInputs(j) {
				w, _ := m.ArcWeight(p, j)
				wd += w
			}
			for _, p := range m.TransOutputs(j) {
				w, _ := m.ArcWeightOut(j, p)
				wd += w
			}
			allNodes = append(allNodes, HubRecord{ID: t.ID, Name: t.Name, Kind: "transition", InDegree: in, OutDegree: out, Degree: in + out, WeightedDegree: wd})
		}
	}

	var totalDegree, maxDegree int
	for _, n := range allNodes {
		totalDegree += n.Degree
		if n.Degree > maxDegree {
			maxDegree = n.Degree
		}
	}
	averageDegree := 0.0
	if len(allNodes) > 0 {
		averageDegree = float64(totalDegree) / float64(len(allNodes))
	}

	var records []HubRecord
	for _, n := range allNodes {
		if n.Degree >= minDegree {
			records = append(records, n)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Degree != records[j].Degree {
			return records[i].Degree > records[j].Degree
		}
		if records[i].WeightedDegree != records[j].WeightedDegree {
			return records[i].WeightedDegree > records[j].WeightedDegree
		}
		return records[i].ID < records[j].ID
	})

	hubCount := len(records)

	var warnings []string
	if topN >= 0 && len(records) > topN {
		records = records[:topN]
		warnings = append(warnings, fmt.Sprintf("truncated to top %d", topN))
	}

	r := &Result{
		Success: true,
		Data: map[string]any{
			"hubs":          records,
			"count":         len(records),
			"hubCount":      hubCount,
			"maxDegree":     maxDegree,
			"averageDegree": averageDegree,
		},
		Summary:  fmt.Sprintf("ranked %d hub node(s)", len(records)),
		Warnings: warnings,
	}
	r = finalize(start, params, len(records), r)
	a.store(k, r)
	return r, nil
}

// IsHub reports whether nodeID meets the hub degree threshold.
func (a *HubAnalyzer) IsHub(ctx context.Context, nodeID string) (bool, error) {
	info, err := a.GetNodeDegreeInfo(ctx, nodeID)
	if err != nil {
		return false, err
	}
	return info != nil && info.Degree >= defaultMinDegree, nil
}

// GetNodeDegreeInfo returns the degree statistics for a single node, or nil
// if nodeID is not a place or transition of the model.
func (a *HubAnalyzer) GetNodeDegreeInfo(ctx context.Context, nodeID string) (*HubRecord, error) {
	r, err := a.Analyze(ctx, Options{"min_degree": 0, "top_n": -1})
	if err != nil {
		return nil, err
	}
	hubs, _ := r.Data["hubs"].([]HubRecord)
	for i := range hubs {
		if hubs[i].ID == nodeID {
			rec := hubs[i]
			return &rec, nil
		}
	}
	return nil, nil
}
