// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// fakeClock advances by a fixed step every time Now is called, so tests
// exercising Timeout can make deterministic progress without sleeping.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type stubExpander struct {
	actions []string
}

func (s stubExpander) CandidateActions(kernel.CodeState) []string {
	out := make([]string, len(s.actions))
	copy(out, s.actions)
	return out
}

func (s stubExpander) Apply(state kernel.CodeState, action string) kernel.CodeState {
	return kernel.ApplyAction(state, action, 0.01)
}

// stubReward rewards actions containing "optimize" highly and everything
// else weakly, so Select should converge toward the optimize branch.
type stubReward struct{}

func (stubReward) Reward(_ context.Context, _ kernel.CodeState, action string) (float64, error) {
	if action == "optimize_hot_paths" {
		return 0.9, nil
	}
	return 0.1, nil
}

func newTestTree(cfg Config) *Tree {
	root := kernel.NewCodeState("fn main() {}", 100, 200, 50)
	expander := stubExpander{actions: []string{"optimize_hot_paths", "reduce_io_overhead"}}
	return NewTree(root, cfg, expander, stubReward{}, &fakeClock{now: time.Unix(0, 0), step: time.Millisecond})
}

func TestTreeRunExpandsAndBackpropagates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 50
	tr := newTestTree(cfg)

	err := tr.Run(context.Background())
	require.NoError(t, err)

	root := tr.Root()
	assert.True(t, root.Visits > 0)
	assert.True(t, root.IsFullyExpanded())
	assert.Len(t, root.Children, 2)
}

func TestTreeBestChildPrefersHigherReward(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 200
	tr := newTestTree(cfg)

	require.NoError(t, tr.Run(context.Background()))

	bestIdx, ok := tr.BestChild()
	require.True(t, ok)
	best, _ := tr.Node(bestIdx)
	assert.Equal(t, "optimize_hot_paths", best.ActionTaken)
}

func TestTreeTerminatesOnDominantChild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 10000
	tr := newTestTree(cfg)

	require.NoError(t, tr.Run(context.Background()))
	assert.Less(t, tr.Len(), 10000)
}

func TestTreeRespectsContextCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1_000_000
	tr := newTestTree(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), tr.Root().Visits)
}

func TestTreeRespectsTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1_000_000
	cfg.Timeout = 5 * time.Millisecond

	root := kernel.NewCodeState("fn main() {}", 100, 200, 50)
	expander := stubExpander{actions: []string{"optimize_hot_paths", "reduce_io_overhead"}}
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Millisecond}
	tr := NewTree(root, cfg, expander, stubReward{}, clock)

	err := tr.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, tr.Root().Visits, uint32(1_000_000))
}

func TestNodeUcb1UnvisitedIsInfinite(t *testing.T) {
	n := NewNode(kernel.NewCodeState("x", 100, 200, 50), -1, "", 0, time.Unix(0, 0))
	assert.True(t, n.Ucb1Value(10, 1.41421356237) > 1e300)
}

func TestNodeConfidenceIntervalNarrowsWithVisits(t *testing.T) {
	n := NewNode(kernel.NewCodeState("x", 100, 200, 50), -1, "optimize_hot_paths", 1, time.Unix(0, 0))
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		n.Update(0.8, now)
	}
	loFew, hiFew := n.ConfidenceInterval(0.95)
	width5 := hiFew - loFew

	for i := 0; i < 95; i++ {
		n.Update(0.8, now)
	}
	loMany, hiMany := n.ConfidenceInterval(0.95)
	width100 := hiMany - loMany

	assert.Less(t, width100, width5)
}

func TestNodeShouldPruneBelowThreshold(t *testing.T) {
	n := NewNode(kernel.NewCodeState("x", 100, 200, 50), -1, "reduce_io_overhead", 1, time.Unix(0, 0))
	now := time.Unix(0, 0)
	for i := 0; i < 20; i++ {
		n.Update(0.05, now)
	}
	assert.True(t, n.ShouldPrune(10, 0.2))
	assert.False(t, n.ShouldPrune(50, 0.2))
}

func TestTreePruneRemovesWeakNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 100
	tr := newTestTree(cfg)
	require.NoError(t, tr.Run(context.Background()))

	removed := tr.Prune(1, 0.5)
	assert.True(t, removed >= 0)
	for _, idx := range tr.Root().Children {
		n, ok := tr.Node(idx)
		if ok && n != nil {
			assert.False(t, n.ShouldPrune(1, 0.5) && removed == 0)
		}
	}
}
