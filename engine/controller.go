// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine composes the Committee (C2), the Action Validator (C3),
// and the classical MCTS controller (C4) behind the narrow interface the
// core exposes to an embedder: submit a full optimization run, evaluate
// one action directly, subscribe to the event bus, and snapshot metrics.
package engine

import (
	"context"
	"time"

	"github.com/sweetmcp/cognitive-core/benchmark"
	"github.com/sweetmcp/cognitive-core/committee"
	"github.com/sweetmcp/cognitive-core/kernel"
	"github.com/sweetmcp/cognitive-core/mcts"
	"github.com/sweetmcp/cognitive-core/validator"
)

// applyRiskDelta is the fixed per-action risk increment the classical
// search applies when materializing a child state.
const applyRiskDelta = 0.01

// Controller is the embedder-facing façade over one OptimizationSpec: it
// owns a Committee, a Validator bound to the same spec, and builds a fresh
// classical mcts.Tree per SubmitOptimization call.
type Controller struct {
	committee *committee.Committee
	validator *validator.Validator
	spec      kernel.OptimizationSpec
	mctsCfg   mcts.Config
	bus       *kernel.EventBus
	clock     kernel.Clock
	window    *benchmark.RollingWindow
}

// NewController wires a Committee and a Validator around one
// OptimizationSpec, ready to drive classical MCTS searches or one-off
// action evaluations. bus and clock may be nil.
func NewController(agents []kernel.LlmEvaluator, spec kernel.OptimizationSpec, committeeCfg committee.Config, mctsCfg mcts.Config, bus *kernel.EventBus, clock kernel.Clock) *Controller {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &Controller{
		committee: committee.New(agents, committeeCfg, bus, clock),
		validator: validator.New(spec),
		spec:      spec,
		mctsCfg:   mctsCfg,
		bus:       bus,
		clock:     clock,
		window:    benchmark.NewRollingWindow(32, nil),
	}
}

// SetTelemetry forwards to the underlying Committee's telemetry sink.
func (c *Controller) SetTelemetry(t kernel.Telemetry) { c.committee.SetTelemetry(t) }

// OptimizationResult is the terminal, always-safe outcome of one
// SubmitOptimization call: the best action the classical search found
// (validated and committee-scored), the state it produces, and enough of
// the search's shape to audit or benchmark it. Per the error-handling
// policy, SubmitOptimization never lets a low-level error escape as a
// panic — a failed run still returns an OptimizationResult, with IsError
// set and a human-readable ErrorMessage.
type OptimizationResult struct {
	BestAction   string
	BestState    kernel.CodeState
	BestReward   float64
	Iterations   int
	TreeSize     int
	IsError      bool
	ErrorMessage string
	TotalTimeMs  int64
}

// safeErrorResult builds the fallback OptimizationResult returned whenever
// the search cannot proceed, keeping the caller's initial state as the
// best-known state (matching the committee's own "return the best-known
// decision, never a panic" behavior on timeout/circuit-open).
func safeErrorResult(initial kernel.CodeState, start time.Time, err error) OptimizationResult {
	return OptimizationResult{
		BestState:    initial,
		IsError:      true,
		ErrorMessage: err.Error(),
		TotalTimeMs:  time.Since(start).Milliseconds(),
	}
}

// SubmitOptimization runs a classical MCTS search over initial, using the
// Committee (via a RewardEvaluator adapter) to score every simulated
// action and the Validator (via an ActionExpander adapter) to restrict
// expansion to currently-valid actions, then returns the best action
// found at the root.
func (c *Controller) SubmitOptimization(ctx context.Context, initial kernel.CodeState, objective string) (OptimizationResult, error) {
	start := c.clock.Now()

	if c.committee.AgentCount() == 0 {
		result := safeErrorResult(initial, start, ErrNoAgents)
		return result, ErrNoAgents
	}

	expander := validatedExpander{validator: c.validator, spec: c.spec}
	reward := committeeReward{committee: c.committee, spec: c.spec, objective: objective}

	tree := mcts.NewTree(initial, c.mctsCfg, expander, reward, c.clock)
	if err := tree.Run(ctx); err != nil {
		c.window.RecordFailure()
		result := safeErrorResult(initial, start, err)
		return result, err
	}

	bestIdx, ok := tree.BestChild()
	if !ok {
		c.window.RecordFailure()
		result := OptimizationResult{
			BestState:   initial,
			TreeSize:    tree.Len(),
			TotalTimeMs: time.Since(start).Milliseconds(),
		}
		return result, nil
	}

	best, _ := tree.Node(bestIdx)
	c.window.RecordSuccess()
	c.window.Observe(time.Since(start))

	return OptimizationResult{
		BestAction:  best.ActionTaken,
		BestState:   best.State,
		BestReward:  best.AverageReward(),
		Iterations:  int(best.Visits),
		TreeSize:    tree.Len(),
		TotalTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// EvaluateAction delegates directly to the underlying Committee, the same
// operation SubmitOptimization uses internally for every simulated
// action, exposed here for embedders that want a single decision without
// running a full search.
func (c *Controller) EvaluateAction(ctx context.Context, state kernel.CodeState, action, objective string) (kernel.ConsensusDecision, error) {
	return c.committee.EvaluateAction(ctx, state, action, c.spec, objective)
}

// SubscribeEvents exposes the shared event bus's Subscribe, returning
// ErrBusClosed if the controller was built without one.
func (c *Controller) SubscribeEvents() (<-chan kernel.CommitteeEvent, func(), error) {
	if c.bus == nil {
		return nil, nil, kernel.ErrBusClosed
	}
	return c.bus.Subscribe()
}

// MetricsSnapshot aggregates every component's point-in-time statistics
// for the benchmarking layer and external observability, folding
// SnapshotMetrics into the same façade as the other three operations.
type MetricsSnapshot struct {
	Committee  committee.PerformanceStats
	Cache      kernel.CacheStats
	Validation validator.ValidationStats
	Search     benchmark.Snapshot
}

// SnapshotMetrics reads every component's current statistics without
// mutating any of them.
func (c *Controller) SnapshotMetrics() MetricsSnapshot {
	return MetricsSnapshot{
		Committee:  c.committee.Stats(),
		Cache:      c.committee.CacheStats(),
		Validation: c.validator.Stats(),
		Search:     c.window.Snapshot(),
	}
}
