// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import (
	"sort"
	"time"

	"github.com/sweetmcp/cognitive-core/entanglement"
	"github.com/sweetmcp/cognitive-core/quantum"
	"github.com/sweetmcp/cognitive-core/quantumconfig"
)

// PruningStrategy selects which signal drives candidate identification.
type PruningStrategy int

const (
	VisitBased PruningStrategy = iota
	AmplitudeBased
	DepthBased
	Hybrid
	LRU
)

// PruningResult summarizes one pruning pass.
type PruningResult struct {
	NodesPruned      int
	InitialSize      int
	FinalSize        int
	MemorySavedBytes int64
	PruningTime      time.Duration
}

// Efficiency is the fraction of the tree removed.
func (r PruningResult) Efficiency() float64 {
	if r.InitialSize == 0 {
		return 0
	}
	return float64(r.NodesPruned) / float64(r.InitialSize)
}

// MemoryEfficiency is bytes saved per node pruned (0 if nothing was pruned).
func (r PruningResult) MemoryEfficiency() float64 {
	if r.NodesPruned == 0 {
		return 0
	}
	return float64(r.MemorySavedBytes) / float64(r.NodesPruned)
}

// PruningRatio is FinalSize/InitialSize, the fraction of the tree retained.
func (r PruningResult) PruningRatio() float64 {
	if r.InitialSize == 0 {
		return 1
	}
	return float64(r.FinalSize) / float64(r.InitialSize)
}

// PruningStats accumulates statistics across every pruning pass run by one
// QuantumTreePruner.
type PruningStats struct {
	TotalPrunings      uint64
	NodesPruned        uint64
	AvgPruningTimeUs   float64
	MemorySavedBytes   uint64
	LastPruning        time.Time
}

// QuantumTreePruner identifies and removes low-value nodes once the tree
// exceeds cfg.MaxTreeSize.
type QuantumTreePruner struct {
	cfg   quantumconfig.Config
	stats PruningStats
}

// NewQuantumTreePruner builds a pruner bound to cfg's size/threshold
// settings.
func NewQuantumTreePruner(cfg quantumconfig.Config) *QuantumTreePruner {
	return &QuantumTreePruner{cfg: cfg}
}

// NeedsPruning reports whether treeSize exceeds the configured cap.
func (p *QuantumTreePruner) NeedsPruning(treeSize int) bool {
	return treeSize > p.cfg.MaxTreeSize
}

// SelectivePrune picks Hybrid when preserving promising nodes and
// AmplitudeBased otherwise.
func (p *QuantumTreePruner) SelectivePrune(tree map[string]*quantum.Node, graph *entanglement.Graph, preservePromising bool) PruningResult {
	strategy := AmplitudeBased
	if preservePromising {
		strategy = Hybrid
	}
	return p.Prune(tree, graph, strategy)
}

// Prune removes up to 25% of the tree (or 1000 nodes, whichever is
// smaller) per strategy, never touching the root, and de-registers every
// incident entanglement for removed nodes.
func (p *QuantumTreePruner) Prune(tree map[string]*quantum.Node, graph *entanglement.Graph, strategy PruningStrategy) PruningResult {
	start := time.Now()
	initialSize := len(tree)

	if !p.NeedsPruning(initialSize) {
		return PruningResult{InitialSize: initialSize, FinalSize: initialSize}
	}

	candidates := p.identifyCandidates(tree, strategy)
	targetCount := initialSize / 4
	if targetCount > 1000 {
		targetCount = 1000
	}
	if len(candidates) > targetCount {
		candidates = candidates[:targetCount]
	}

	pruned := 0
	for _, id := range candidates {
		// The root is the only node without a parent; a candidate already
		// removed as part of an earlier candidate's subtree is skipped.
		if n, ok := tree[id]; !ok || n.ParentID == "" {
			continue
		}
		p.removeSubtree(tree, graph, id)
		pruned++
	}

	finalSize := len(tree)
	elapsed := time.Since(start)
	memorySaved := int64(pruned) * 1024

	p.stats.TotalPrunings++
	p.stats.NodesPruned += uint64(pruned)
	n := float64(p.stats.TotalPrunings)
	p.stats.AvgPruningTimeUs = (p.stats.AvgPruningTimeUs*(n-1) + float64(elapsed.Microseconds())) / n
	p.stats.MemorySavedBytes += uint64(memorySaved)
	p.stats.LastPruning = start

	return PruningResult{
		NodesPruned:      pruned,
		InitialSize:      initialSize,
		FinalSize:        finalSize,
		MemorySavedBytes: memorySaved,
		PruningTime:      elapsed,
	}
}

// removeSubtree deletes id and every descendant reachable through its
// Children map, de-registering entanglements as it goes.
func (p *QuantumTreePruner) removeSubtree(tree map[string]*quantum.Node, graph *entanglement.Graph, id string) {
	node, ok := tree[id]
	if !ok {
		return
	}
	for _, childID := range node.Children {
		p.removeSubtree(tree, graph, childID)
	}
	delete(tree, id)
	if graph != nil {
		graph.RemoveNode(id)
	}
}

func (p *QuantumTreePruner) identifyCandidates(tree map[string]*quantum.Node, strategy PruningStrategy) []string {
	switch strategy {
	case VisitBased:
		return p.lowVisitNodes(tree)
	case AmplitudeBased:
		return p.lowAmplitudeNodes(tree)
	case DepthBased:
		return p.deepNodes(tree)
	case Hybrid:
		return p.hybridCandidates(tree)
	case LRU:
		return p.lruNodes(tree)
	default:
		return nil
	}
}

func (p *QuantumTreePruner) lowVisitNodes(tree map[string]*quantum.Node) []string {
	minVisits := uint32(5)
	var ids []string
	for id, n := range tree {
		if n.Visits < minVisits {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return tree[ids[i]].Visits < tree[ids[j]].Visits })
	return ids
}

func (p *QuantumTreePruner) lowAmplitudeNodes(tree map[string]*quantum.Node) []string {
	var ids []string
	for id, n := range tree {
		if n.AmplitudeNorm() < p.cfg.AmplitudeThreshold {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return tree[ids[i]].AmplitudeNorm() < tree[ids[j]].AmplitudeNorm() })
	return ids
}

func (p *QuantumTreePruner) deepNodes(tree map[string]*quantum.Node) []string {
	var ids []string
	for id := range tree {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return tree[ids[i]].Depth > tree[ids[j]].Depth })
	return ids
}

func (p *QuantumTreePruner) hybridCandidates(tree map[string]*quantum.Node) []string {
	type scored struct {
		id    string
		score float64
	}
	var list []scored
	for id, n := range tree {
		amplitudeScore := 1.0 - n.AmplitudeNorm()
		visitScore := 1.0 / (1.0 + float64(n.Visits))
		depthScore := float64(n.Depth) / 100.0
		score := amplitudeScore*0.4 + visitScore*0.4 + depthScore*0.2
		list = append(list, scored{id, score})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].score > list[j].score })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

func (p *QuantumTreePruner) lruNodes(tree map[string]*quantum.Node) []string {
	var ids []string
	for id, n := range tree {
		if n.Visits == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stats returns a copy of the pruner's accumulated statistics.
func (p *QuantumTreePruner) Stats() PruningStats { return p.stats }

// ResetStats clears accumulated statistics.
func (p *QuantumTreePruner) ResetStats() { p.stats = PruningStats{} }

// UpdateConfig swaps the pruner's configuration.
func (p *QuantumTreePruner) UpdateConfig(cfg quantumconfig.Config) { p.cfg = cfg }
