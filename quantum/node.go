// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantum

import (
	"math"
	"math/cmplx"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// NodeState is the quantum-augmented analogue of kernel.CodeState: a
// classical state plus the superposition, phase, and decoherence an
// expansion step evolves alongside it. Entanglement is tracked externally
// by the entanglement package, keyed by node ID, rather than duplicated
// here — one graph, not one copy per node.
type NodeState struct {
	Classical    kernel.CodeState
	Superposition SuperpositionState
	Phase        float64
	Decoherence  float64
}

// NewNodeState seeds a fresh quantum state from a classical one, with an
// equal-weight superposition over the given action count.
func NewNodeState(classical kernel.CodeState, actionCount int) NodeState {
	return NodeState{
		Classical:     classical,
		Superposition: NewSuperposition(actionCount),
	}
}

// Node is one entry in the quantum MCTS tree, addressed by string ID
// (mirroring the original's HashMap<String, QuantumMCTSNode> tree, since
// entanglement lookups are also string-keyed).
type Node struct {
	ID               string
	ParentID         string // "" for the root
	ActionTaken      string
	State            NodeState
	Amplitude        complex128
	QuantumReward    complex128
	Visits           uint32
	Children         map[string]string // action -> child id
	UntriedActions   []string
	IsTerminal       bool
	Depth            uint16
	ImprovementDepth uint32
}

// NewNode constructs a node with full-weight amplitude (1+0i) and an empty
// child map.
func NewNode(id, parentID, actionTaken string, state NodeState, depth uint16) *Node {
	return &Node{
		ID:          id,
		ParentID:    parentID,
		ActionTaken: actionTaken,
		State:       state,
		Amplitude:   complex(1, 0),
		Children:    make(map[string]string),
		Depth:       depth,
	}
}

// AmplitudeNorm is |Amplitude|.
func (n *Node) AmplitudeNorm() float64 { return cmplx.Abs(n.Amplitude) }

// AverageReward is the real part of the accumulated quantum reward, scaled
// by visits — the classical-comparable scalar used by selection and
// reporting.
func (n *Node) AverageReward() float64 {
	if n.Visits == 0 {
		return 0
	}
	return real(n.QuantumReward) / float64(n.Visits)
}

// QuantumScore is the selection score: UCB1 plus an amplitude/coherence
// bonus. Unvisited nodes score +Inf.
func (n *Node) QuantumScore(parentVisits uint32, explorationConstant float64) float64 {
	if n.Visits == 0 {
		return math.Inf(1)
	}
	exploitation := n.AverageReward()
	exploration := explorationConstant * math.Sqrt(math.Log(float64(parentVisits))/float64(n.Visits))
	coherenceBonus := n.AmplitudeNorm() * (1 - n.State.Decoherence)
	return exploitation + exploration + coherenceBonus
}

// IsFullyExpanded reports whether every untried action has been consumed.
func (n *Node) IsFullyExpanded() bool { return len(n.UntriedActions) == 0 }

// PopUntriedAction removes and returns the last untried action.
func (n *Node) PopUntriedAction() (string, bool) {
	if len(n.UntriedActions) == 0 {
		return "", false
	}
	last := len(n.UntriedActions) - 1
	action := n.UntriedActions[last]
	n.UntriedActions = n.UntriedActions[:last]
	return action, true
}

// ChildAmplitude computes a_child = a_parent * exp(i*phase(action)) * 0.9,
// the amplitude-decay rule applied when a node's children are created.
func ChildAmplitude(parentAmplitude complex128, action string) complex128 {
	phase := ActionPhase(action)
	return parentAmplitude * cmplx.Rect(1, phase) * 0.9
}

// QuantumReward forms q_reward = Complex(re=scalarReward, im=sin(phase))
// from a simulation's scalar reward and leaf phase, then applies an
// injected correction (error-correction capability, abstracted behind
// kernel.RewardCorrector).
func QuantumReward(scalarReward, phase float64, corrector kernel.RewardCorrector) complex128 {
	raw := complex(scalarReward, math.Sin(phase))
	if corrector == nil {
		return raw
	}
	return corrector.Correct(raw)
}

// Update folds in one simulation's quantum reward and increments visits.
func (n *Node) Update(qReward complex128) {
	n.QuantumReward += qReward * n.Amplitude
	n.Visits++
}

// UpdateFromEntangledNeighbor applies the entangled-neighbor backpropagation
// rule: add q_reward * strength * 0.5 to the neighbor, exactly once per
// neighbor per simulation.
func (n *Node) UpdateFromEntangledNeighbor(qReward complex128, strength float64) {
	n.QuantumReward += qReward * complex(strength*0.5, 0)
}
