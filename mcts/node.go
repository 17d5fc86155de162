// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mcts implements the classical Monte Carlo Tree Search controller
//: an arena-indexed tree of Nodes, UCB1 selection, and the
// per-iteration Select->Expand->Simulate->Backpropagate loop.
package mcts

import (
	"math"
	"time"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// zScore maps a confidence level to its two-tailed normal z-score; unlisted
// levels fall back to the 90% value.
func zScore(confidenceLevel float64) float64 {
	switch confidenceLevel {
	case 0.95:
		return 1.96
	case 0.99:
		return 2.576
	default:
		return 1.645
	}
}

// QualityMetrics tracks a node's evolving stability/convergence/diversity
// signals, refreshed as the node accumulates visits.
type QualityMetrics struct {
	StabilityScore       float64
	ConvergenceRate      float64
	ExplorationDiversity float64
	PredictionAccuracy   float64
}

// NewQualityMetrics returns the neutral 0.5-everywhere starting point.
func NewQualityMetrics() QualityMetrics {
	return QualityMetrics{StabilityScore: 0.5, ConvergenceRate: 0.5, ExplorationDiversity: 0.5, PredictionAccuracy: 0.5}
}

// UpdateStability folds in a newly observed reward variance.
func (q *QualityMetrics) UpdateStability(rewardVariance float64) {
	q.StabilityScore = clamp01(1.0 / (1.0 + rewardVariance))
}

// UpdateDiversity folds in the ratio of unique to total actions tried.
func (q *QualityMetrics) UpdateDiversity(uniqueActions, totalActions int) {
	if totalActions > 0 {
		q.ExplorationDiversity = clamp01(float64(uniqueActions) / float64(totalActions))
	}
}

// UpdateAccuracy applies an EMA (alpha=0.2) toward the latest predicted-vs-
// actual reward accuracy.
func (q *QualityMetrics) UpdateAccuracy(predicted, actual float64) {
	errv := math.Abs(predicted - actual)
	accuracy := 1.0 / (1.0 + errv)
	const alpha = 0.2
	q.PredictionAccuracy = alpha*accuracy + (1-alpha)*q.PredictionAccuracy
}

// NodeMetadata is the bookkeeping a Node carries beyond its reward/visit
// counters: operation counts, a bounded performance history, and derived
// quality metrics.
type NodeMetadata struct {
	CreatedAt          time.Time
	LastUpdatedAt      time.Time
	UpdateCount        uint32
	ExpansionCount     uint32
	SimulationCount    uint32
	BackpropCount      uint32
	Quality            QualityMetrics
	PerformanceHistory []float64
}

// NewNodeMetadata stamps both timestamps at now.
func NewNodeMetadata(now time.Time) NodeMetadata {
	return NodeMetadata{CreatedAt: now, LastUpdatedAt: now, Quality: NewQualityMetrics()}
}

// RecordExpansion/RecordSimulation/RecordBackprop bump their respective
// counters and refresh LastUpdatedAt.
func (m *NodeMetadata) RecordExpansion(now time.Time)  { m.ExpansionCount++; m.LastUpdatedAt = now }
func (m *NodeMetadata) RecordSimulation(now time.Time) { m.SimulationCount++; m.LastUpdatedAt = now }
func (m *NodeMetadata) RecordBackprop(now time.Time)   { m.BackpropCount++; m.LastUpdatedAt = now }

// AddPerformanceMeasurement appends to the history, capped at 100 samples.
func (m *NodeMetadata) AddPerformanceMeasurement(v float64) {
	m.PerformanceHistory = append(m.PerformanceHistory, v)
	if len(m.PerformanceHistory) > 100 {
		m.PerformanceHistory = m.PerformanceHistory[1:]
	}
}

// AveragePerformance is the mean of the retained history.
func (m NodeMetadata) AveragePerformance() float64 {
	if len(m.PerformanceHistory) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m.PerformanceHistory {
		sum += v
	}
	return sum / float64(len(m.PerformanceHistory))
}

// PerformanceTrend is positive when the second half of the retained history
// outperforms the first half, negative when it degrades.
func (m NodeMetadata) PerformanceTrend() float64 {
	n := len(m.PerformanceHistory)
	if n < 2 {
		return 0
	}
	half := n / 2
	var recent, early float64
	for _, v := range m.PerformanceHistory[half:] {
		recent += v
	}
	for _, v := range m.PerformanceHistory[:half] {
		early += v
	}
	recent /= float64(n - half)
	early /= float64(half)
	return recent - early
}

// Node is one arena-indexed entry in the search tree. Children and Parent
// are indices into the owning Tree's arena rather than pointers, so the
// tree can be grown, pruned, and serialized without pointer-chasing.
type Node struct {
	State          kernel.CodeState
	Visits         uint32
	TotalReward    float64
	Children       []int
	Parent         int // -1 for the root
	ActionTaken    string
	IsTerminal     bool
	Depth          uint16
	UntriedActions []string
	Metadata       NodeMetadata
}

// NewNode constructs a node with the given state/parent/action/depth and a
// freshly stamped NodeMetadata.
func NewNode(state kernel.CodeState, parent int, actionTaken string, depth uint16, now time.Time) *Node {
	return &Node{
		State:       state,
		Parent:      parent,
		ActionTaken: actionTaken,
		Depth:       depth,
		Metadata:    NewNodeMetadata(now),
	}
}

// Ucb1Value is the standard upper-confidence-bound score used to balance
// exploitation of high-reward children against exploration of
// under-visited ones. An unvisited node scores +Inf so it is always
// selected first.
func (n *Node) Ucb1Value(parentVisits uint32, explorationConstant float64) float64 {
	if n.Visits == 0 {
		return math.Inf(1)
	}
	exploitation := n.TotalReward / float64(n.Visits)
	exploration := explorationConstant * math.Sqrt(math.Log(float64(parentVisits))/float64(n.Visits))
	return exploitation + exploration
}

// Update folds in one simulation's observed reward.
func (n *Node) Update(reward float64, now time.Time) {
	n.Visits++
	n.TotalReward += reward
	n.Metadata.UpdateCount++
	n.Metadata.LastUpdatedAt = now
	n.Metadata.AddPerformanceMeasurement(reward)
}

// AverageReward is TotalReward/Visits, or 0 for an unvisited node.
func (n *Node) AverageReward() float64 {
	if n.Visits == 0 {
		return 0
	}
	return n.TotalReward / float64(n.Visits)
}

// IsFullyExpanded reports whether every untried action has been consumed.
func (n *Node) IsFullyExpanded() bool { return len(n.UntriedActions) == 0 }

// IsLeaf reports whether the node has no children yet.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// PopUntriedAction removes and returns the last untried action, or ("",
// false) if none remain.
func (n *Node) PopUntriedAction() (string, bool) {
	if len(n.UntriedActions) == 0 {
		return "", false
	}
	last := len(n.UntriedActions) - 1
	action := n.UntriedActions[last]
	n.UntriedActions = n.UntriedActions[:last]
	return action, true
}

// ConfidenceInterval returns a normal-approximation interval around the
// node's average reward (treated as a Bernoulli-like proportion, matching
// the reward range convention used throughout the search).
func (n *Node) ConfidenceInterval(confidenceLevel float64) (float64, float64) {
	if n.Visits < 2 {
		return 0, 0
	}
	mean := n.AverageReward()
	stdErr := math.Sqrt(mean * (1 - mean) / float64(n.Visits))
	margin := zScore(confidenceLevel) * stdErr
	return mean - margin, mean + margin
}

// SelectionPriority blends UCB1 with a depth bonus (favoring shallower,
// cheaper-to-verify nodes) and the node's own state quality.
func (n *Node) SelectionPriority(parentVisits uint32, explorationConstant float64) float64 {
	ucb1 := n.Ucb1Value(parentVisits, explorationConstant)
	depthBonus := 1.0 / (1.0 + float64(n.Depth)*0.1)
	stateQuality := n.State.PerformanceScore()
	return ucb1*0.7 + depthBonus*0.2 + stateQuality*0.1
}

// ShouldPrune reports whether a sufficiently-visited node's average reward
// has fallen below minReward.
func (n *Node) ShouldPrune(minVisits uint32, minReward float64) bool {
	return n.Visits >= minVisits && n.AverageReward() < minReward
}

// EfficiencyScore blends reward, visit cost, and depth cost into one
// figure used by pruning and reporting.
func (n *Node) EfficiencyScore() float64 {
	if n.Visits == 0 {
		return 0
	}
	rewardEfficiency := n.AverageReward()
	visitEfficiency := 1.0 / (1.0 + float64(n.Visits)*0.01)
	depthEfficiency := 1.0 / (1.0 + float64(n.Depth)*0.05)
	return rewardEfficiency*0.6 + visitEfficiency*0.2 + depthEfficiency*0.2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
