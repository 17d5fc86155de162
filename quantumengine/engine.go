// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import (
	"context"
	"math"
	"time"

	"github.com/sweetmcp/cognitive-core/entanglement"
	"github.com/sweetmcp/cognitive-core/kernel"
	"github.com/sweetmcp/cognitive-core/quantum"
	"github.com/sweetmcp/cognitive-core/quantumconfig"
)

// RewardSimulator evaluates the scalar reward of reaching a classical
// state, the same role kernel-level RewardEvaluator plays for the
// classical mcts package.
type RewardSimulator interface {
	Simulate(ctx context.Context, state kernel.CodeState) (float64, error)
}

// Engine runs the full quantum MCTS pipeline: selection, expansion,
// backpropagation, periodic amplitude amplification, pruning, and the
// outer recursive-improvement loop.
type Engine struct {
	cfg       quantumconfig.Config
	graph     *entanglement.Graph
	tree      map[string]*quantum.Node
	rootID    string
	selector  *Selector
	expander  *TreeExpansionEngine
	pruner    *QuantumTreePruner
	amplifier *QuantumAmplitudeAmplifier
	backprop  *Backpropagator
	reward    RewardSimulator
	corrector kernel.RewardCorrector
	clock     kernel.Clock
}

// NewEngine wires every quantum MCTS component together over a fresh
// single-node tree rooted at root.
func NewEngine(cfg quantumconfig.Config, root kernel.CodeState, apply ActionApplier, reward RewardSimulator, corrector kernel.RewardCorrector, clock kernel.Clock) *Engine {
	graph := entanglement.New()
	expander := NewTreeExpansionEngine(cfg, graph, apply)

	rootState := quantum.NewNodeState(root, 3)
	rootNode := quantum.NewNode("root", "", "", rootState, 0)
	rootNode.UntriedActions = expander.CandidateActions(root)

	if corrector == nil {
		corrector = kernel.IdentityRewardCorrector{}
	}
	if clock == nil {
		clock = kernel.SystemClock{}
	}

	return &Engine{
		cfg:       cfg,
		graph:     graph,
		tree:      map[string]*quantum.Node{"root": rootNode},
		rootID:    "root",
		selector:  NewSelector(cfg.QuantumExploration, graph),
		expander:  expander,
		pruner:    NewQuantumTreePruner(cfg),
		amplifier: NewQuantumAmplitudeAmplifier(),
		backprop:  NewBackpropagator(graph),
		reward:    reward,
		corrector: corrector,
		clock:     clock,
	}
}

// Tree exposes the live node map for inspection (tests, benchmarking).
func (e *Engine) Tree() map[string]*quantum.Node { return e.tree }

// Graph exposes the live entanglement graph for inspection.
func (e *Engine) Graph() *entanglement.Graph { return e.graph }

// selectionPath walks from the root to a leaf via Select, recording every
// visited node id.
func (e *Engine) selectionPath(strategy SelectionStrategy) ([]string, error) {
	path := []string{e.rootID}
	current := e.tree[e.rootID]
	for len(current.Children) > 0 && current.IsFullyExpanded() {
		result, err := e.selector.Select(e.tree, current, strategy)
		if err != nil {
			return nil, err
		}
		path = append(path, result.ChildID)
		current = e.tree[result.ChildID]
	}
	return path, nil
}

// iterate runs one select-expand-simulate-backpropagate cycle, returning
// the convergence contribution (the leaf's post-update average reward).
func (e *Engine) iterate(ctx context.Context, strategy SelectionStrategy) (float64, error) {
	path, err := e.selectionPath(strategy)
	if err != nil {
		return 0, err
	}

	leafID := path[len(path)-1]
	leaf := e.tree[leafID]

	if !leaf.IsTerminal && !leaf.IsFullyExpanded() {
		action, ok := leaf.PopUntriedAction()
		if ok {
			child, err := e.expander.Expand(ctx, e.tree, leaf, action)
			if err != nil {
				return 0, err
			}
			e.tree[child.ID] = child
			path = append(path, child.ID)
			leaf = child
		}
	}

	scalarReward, err := e.reward.Simulate(ctx, leaf.State.Classical)
	if err != nil {
		return 0, err
	}
	qReward := quantum.QuantumReward(scalarReward, leaf.State.Phase, e.corrector)

	e.backprop.Backpropagate(e.tree, path, qReward)

	return leaf.AverageReward(), nil
}

// convergenceScore summarizes how settled the tree currently is: the
// root's best child visit share, a proxy for classical MCTS's
// shouldTerminate check.
func (e *Engine) convergenceScore() float64 {
	root, ok := e.tree[e.rootID]
	if !ok || root.Visits == 0 || len(root.Children) == 0 {
		return 0
	}
	var totalVisits, bestVisits uint32
	for _, childID := range root.Children {
		child, ok := e.tree[childID]
		if !ok {
			continue
		}
		totalVisits += child.Visits
		if child.Visits > bestVisits {
			bestVisits = child.Visits
		}
	}
	if totalVisits == 0 {
		return 0
	}
	return float64(bestVisits) / float64(totalVisits)
}

// RunDepth performs one recursive-improvement depth: iterationsPerDepth
// select/expand/simulate/backpropagate cycles, then an amplification pass
// and, if the tree has grown past MaxTreeSize, a pruning pass.
func (e *Engine) RunDepth(ctx context.Context, depth uint32, iterationsPerDepth int, strategy SelectionStrategy) (DepthResult, error) {
	start := e.clock.Now()

	for i := 0; i < iterationsPerDepth; i++ {
		select {
		case <-ctx.Done():
			return DepthResult{}, ctx.Err()
		default:
		}
		if _, err := e.iterate(ctx, strategy); err != nil {
			return DepthResult{}, err
		}
	}

	convergence := e.convergenceScore()
	amp := e.amplifier.AmplifyPromisingNodes(e.tree, convergence, nil)

	var pruneResult PruningResult
	if e.pruner.NeedsPruning(len(e.tree)) {
		pruneResult = e.pruner.SelectivePrune(e.tree, e.graph, true)
	}

	return DepthResult{
		Depth:            depth,
		ConvergenceScore: convergence,
		NodesExpanded:    len(e.tree),
		Amplification:    amp,
		Pruning:          pruneResult,
		Duration:         e.clock.Now().Sub(start),
	}, nil
}

// Improve runs the outer recursive-improvement loop: up to
// cfg.RecursiveIterations depths, stopping early on high convergence,
// context cancellation, or a deadline. iterationsPerDepth controls how
// many select/expand/simulate/backpropagate cycles run per depth.
func (e *Engine) Improve(ctx context.Context, iterationsPerDepth int, strategy SelectionStrategy) ImprovementResult {
	start := e.clock.Now()

	var (
		history              []DepthResult
		bestConvergence      float64
		terminationReason    = MaxDepthReached
		depth                uint32
	)

	for depth = 0; depth < uint32(e.cfg.RecursiveIterations); depth++ {
		select {
		case <-ctx.Done():
			terminationReason = Timeout
			if ctx.Err() != context.DeadlineExceeded {
				terminationReason = UserRequested
			}
			goto done
		default:
		}

		result, err := e.RunDepth(ctx, depth, iterationsPerDepth, strategy)
		if err != nil {
			terminationReason = Error
			goto done
		}
		history = append(history, result)
		bestConvergence = math.Max(bestConvergence, result.ConvergenceScore)

		if result.ConvergenceScore >= 1.0-e.cfg.DecoherenceThreshold {
			terminationReason = HighConvergence
			depth++
			break
		}
		if len(e.tree) >= e.cfg.MaxTreeSize {
			terminationReason = MemoryPressure
			depth++
			break
		}
	}

done:
	final := 0.0
	if len(history) > 0 {
		final = history[len(history)-1].ConvergenceScore
	}

	result := ImprovementResult{
		TotalDepths:           depth,
		FinalConvergenceScore: final,
		BestConvergenceScore:  bestConvergence,
		ImprovementHistory:    history,
		TotalTime:             e.clock.Now().Sub(start),
		MemoryPeak:            len(e.tree) * 1024,
		Success:               terminationReason.IsSuccessful(),
		TerminationReason:     terminationReason,
	}
	return result
}
