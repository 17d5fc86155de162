// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweetmcp/cognitive-core/kernel"
)

func TestNewSuperpositionIsNormalized(t *testing.T) {
	s := NewSuperposition(4)
	probs := s.Measure(Computational())
	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSuperpositionEvolvePreservesProbabilities(t *testing.T) {
	s := NewSuperposition(3)
	before := s.Measure(Computational())
	s.Evolve(1.2345)
	after := s.Measure(Computational())
	for i := range before {
		assert.InDelta(t, before[i], after[i], 1e-9)
	}
}

func TestActionPhaseIsDeterministic(t *testing.T) {
	a := ActionPhase("optimize_hot_paths")
	b := ActionPhase("optimize_hot_paths")
	assert.Equal(t, a, b)
	assert.True(t, a >= 0 && a < 2*math.Pi)
}

func TestChildAmplitudeDecays(t *testing.T) {
	parent := complex(1.0, 0.0)
	child := ChildAmplitude(parent, "reduce_io_overhead")
	assert.InDelta(t, 0.9, real(child)*real(child)+imag(child)*imag(child), 0.2)
}

func TestNodeQuantumScoreUnvisitedIsInfinite(t *testing.T) {
	state := NewNodeState(kernel.NewCodeState("x", 100, 200, 50), 2)
	n := NewNode("root", "", "", state, 0)
	assert.True(t, math.IsInf(n.QuantumScore(5, 1.4), 1))
}

func TestNodeUpdateAccumulatesReward(t *testing.T) {
	state := NewNodeState(kernel.NewCodeState("x", 100, 200, 50), 2)
	n := NewNode("root", "", "", state, 0)
	n.Update(QuantumReward(0.8, 0.1, kernel.IdentityRewardCorrector{}))
	assert.Equal(t, uint32(1), n.Visits)
	assert.True(t, n.AverageReward() > 0)
}

func TestPopUntriedActionExhausts(t *testing.T) {
	state := NewNodeState(kernel.NewCodeState("x", 100, 200, 50), 2)
	n := NewNode("root", "", "", state, 0)
	n.UntriedActions = []string{"a", "b"}

	_, ok1 := n.PopUntriedAction()
	_, ok2 := n.PopUntriedAction()
	_, ok3 := n.PopUntriedAction()
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
	assert.True(t, n.IsFullyExpanded())
}
