// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcts

import (
	"context"
	"time"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// ActionExpander supplies the untried-action pool for a freshly created
// node and applies one action to a CodeState, producing the child's state.
// The Committee (C2) mediates the actual scoring; ActionExpander only
// needs to know how to enumerate and mechanically apply actions.
type ActionExpander interface {
	CandidateActions(state kernel.CodeState) []string
	Apply(state kernel.CodeState, action string) kernel.CodeState
}

// RewardEvaluator scores one (state, action) application, normally by
// delegating to the Committee's EvaluateAction and reading
// ConsensusDecision.OverallScore.
type RewardEvaluator interface {
	Reward(ctx context.Context, state kernel.CodeState, action string) (float64, error)
}

// Tree is the arena-indexed classical MCTS search tree: Select, Expand,
// Simulate, and Backpropagate all operate on integer node indices rather
// than pointers.
type Tree struct {
	nodes    []*Node
	cfg      Config
	expander ActionExpander
	reward   RewardEvaluator
	clock    kernel.Clock
}

// NewTree builds a tree rooted at root, ready to run iterations.
func NewTree(root kernel.CodeState, cfg Config, expander ActionExpander, reward RewardEvaluator, clock kernel.Clock) *Tree {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	now := clock.Now()
	rootNode := NewNode(root, -1, "", 0, now)
	rootNode.UntriedActions = expander.CandidateActions(root)
	return &Tree{
		nodes:    []*Node{rootNode},
		cfg:      cfg,
		expander: expander,
		reward:   reward,
		clock:    clock,
	}
}

// Node returns the node at idx, or (nil, false) if out of range.
func (t *Tree) Node(idx int) (*Node, bool) {
	if idx < 0 || idx >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[idx], true
}

// Root is always index 0.
func (t *Tree) Root() *Node { return t.nodes[0] }

// Len reports how many nodes the arena currently holds.
func (t *Tree) Len() int { return len(t.nodes) }

// Run executes iterations of Select->Expand->Simulate->Backpropagate until
// MaxIterations is reached, ctx is cancelled, Timeout elapses, or the root
// is fully expanded with a dominant child (visit share >= 0.9).
func (t *Tree) Run(ctx context.Context) error {
	var deadline time.Time
	if t.cfg.Timeout > 0 {
		deadline = t.clock.Now().Add(t.cfg.Timeout)
	}

	for i := uint64(0); i < t.cfg.MaxIterations; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if !deadline.IsZero() && t.clock.Now().After(deadline) {
			return nil
		}
		if t.shouldTerminate() {
			return nil
		}
		if err := t.iterate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// shouldTerminate reports the early-stop condition: the root has no
// untried actions left and one child holds at least 90% of its visits.
func (t *Tree) shouldTerminate() bool {
	root := t.Root()
	if !root.IsFullyExpanded() || root.Visits == 0 {
		return false
	}
	var best uint32
	for _, childIdx := range root.Children {
		child := t.nodes[childIdx]
		if child.Visits > best {
			best = child.Visits
		}
	}
	return float64(best)/float64(root.Visits) >= 0.9
}

// iterate runs exactly one Select->Expand->Simulate->Backpropagate pass.
func (t *Tree) iterate(ctx context.Context) error {
	path := t.selectPath()
	leafIdx := path[len(path)-1]
	leaf := t.nodes[leafIdx]

	var (
		rewardIdx = leafIdx
		value     float64
		err       error
	)

	if !leaf.IsTerminal {
		if childIdx, expanded := t.expand(leafIdx); expanded {
			path = append(path, childIdx)
			rewardIdx = childIdx
		}
	}

	child := t.nodes[rewardIdx]
	action := child.ActionTaken
	if action == "" {
		action = "noop"
	}
	value, err = t.reward.Reward(ctx, child.State, action)
	if err != nil {
		return err
	}

	t.backpropagate(path, value)
	return nil
}

// selectPath descends from the root via UCB1, stopping at a node with
// untried actions or no children, returning the full path of indices.
func (t *Tree) selectPath() []int {
	path := []int{0}
	current := t.nodes[0]
	for !current.IsLeaf() && current.IsFullyExpanded() {
		bestIdx := current.Children[0]
		bestScore := t.nodes[bestIdx].Ucb1Value(current.Visits, t.cfg.ExplorationConstant)
		for _, childIdx := range current.Children[1:] {
			score := t.nodes[childIdx].Ucb1Value(current.Visits, t.cfg.ExplorationConstant)
			if score > bestScore {
				bestScore, bestIdx = score, childIdx
			}
		}
		path = append(path, bestIdx)
		current = t.nodes[bestIdx]
	}
	return path
}

// expand pops one untried action from the node at idx, materializes its
// child state via the ActionExpander, and appends the new node to the
// arena, returning its index.
func (t *Tree) expand(idx int) (int, bool) {
	node := t.nodes[idx]
	action, ok := node.PopUntriedAction()
	if !ok {
		return 0, false
	}
	now := t.clock.Now()
	childState := t.expander.Apply(node.State, action)
	child := NewNode(childState, idx, action, node.Depth+1, now)
	child.UntriedActions = t.expander.CandidateActions(childState)

	childIdx := len(t.nodes)
	t.nodes = append(t.nodes, child)
	node.Children = append(node.Children, childIdx)
	node.Metadata.RecordExpansion(now)
	return childIdx, true
}

// backpropagate increments visits and accumulates reward along path, from
// the expanded/simulated node back to the root.
func (t *Tree) backpropagate(path []int, reward float64) {
	now := t.clock.Now()
	for i := len(path) - 1; i >= 0; i-- {
		node := t.nodes[path[i]]
		node.Update(reward, now)
		node.Metadata.RecordBackprop(now)
	}
}

// BestChild returns the index of the root's child with the highest
// average reward, or (-1, false) if the root has no children.
func (t *Tree) BestChild() (int, bool) {
	root := t.Root()
	if len(root.Children) == 0 {
		return -1, false
	}
	best := root.Children[0]
	for _, idx := range root.Children[1:] {
		if t.nodes[idx].AverageReward() > t.nodes[best].AverageReward() {
			best = idx
		}
	}
	return best, true
}

// Prune removes every node satisfying ShouldPrune(minVisits, minReward)
// from the tree, along with its subtree, returning the number of nodes
// removed. Indices of surviving nodes are preserved (pruned slots are
// emptied rather than compacted, keeping existing references valid).
func (t *Tree) Prune(minVisits uint32, minReward float64) int {
	removed := 0
	for i := 1; i < len(t.nodes); i++ { // never prune the root
		n := t.nodes[i]
		if n == nil {
			continue
		}
		// Children are appended after their parent, so a pruned parent has
		// already been emptied by the time its descendants are visited.
		if n.ShouldPrune(minVisits, minReward) || t.nodes[n.Parent] == nil {
			t.nodes[i] = nil
			removed++
		}
	}
	if removed > 0 {
		t.compactChildren()
	}
	return removed
}

// compactChildren drops dangling child references left behind by Prune.
func (t *Tree) compactChildren() {
	for _, n := range t.nodes {
		if n == nil {
			continue
		}
		kept := n.Children[:0]
		for _, idx := range n.Children {
			if t.nodes[idx] != nil {
				kept = append(kept, idx)
			}
		}
		n.Children = kept
	}
}
