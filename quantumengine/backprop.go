// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import (
	"github.com/sweetmcp/cognitive-core/entanglement"
	"github.com/sweetmcp/cognitive-core/quantum"
)

// BackpropResult summarizes one backpropagation pass up a selection path.
type BackpropResult struct {
	NodesUpdated       int
	EntangledUpdates   int
	FinalReward        complex128
}

// Backpropagator threads a quantum reward up a selection path and, once
// per simulation, across every node entangled with any node on that path:
// for each entangled neighbor, add q_reward * strength * 0.5 exactly once.
type Backpropagator struct {
	Graph *entanglement.Graph
}

// NewBackpropagator binds a Backpropagator to the entanglement graph that
// should receive the neighbor-reward side channel.
func NewBackpropagator(graph *entanglement.Graph) *Backpropagator {
	return &Backpropagator{Graph: graph}
}

// Backpropagate applies qReward to every node along path (ordered and
// updated root to leaf) via Node.Update, then applies the entangled-
// neighbor share exactly once per neighbor discovered off the path.
func (b *Backpropagator) Backpropagate(tree map[string]*quantum.Node, path []string, qReward complex128) BackpropResult {
	result := BackpropResult{FinalReward: qReward}

	for _, id := range path {
		node, ok := tree[id]
		if !ok {
			continue
		}
		node.Update(qReward)
		result.NodesUpdated++
	}

	if b.Graph == nil {
		return result
	}

	notified := make(map[string]bool, len(path))
	for _, id := range path {
		notified[id] = true
	}

	for _, id := range path {
		for _, neighbor := range b.Graph.GetEntangled(id) {
			if notified[neighbor.NodeID] {
				continue
			}
			node, ok := tree[neighbor.NodeID]
			if !ok {
				continue
			}
			node.UpdateFromEntangledNeighbor(qReward, neighbor.Strength)
			notified[neighbor.NodeID] = true
			result.EntangledUpdates++
		}
	}

	return result
}
