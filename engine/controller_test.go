// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetmcp/cognitive-core/committee"
	"github.com/sweetmcp/cognitive-core/kernel"
	"github.com/sweetmcp/cognitive-core/mcts"
)

type fakeAgent struct {
	score float64
}

func (a fakeAgent) Evaluate(ctx context.Context, state kernel.CodeState, action string, rubric kernel.EvaluationRubric, phase string, prior []kernel.AgentEvaluation, hint kernel.SteeringHint) (kernel.AgentEvaluation, error) {
	return kernel.AgentEvaluation{
		Agent:         "fake",
		MakesProgress: true,
		Confidence:    a.score,
		Alignment:     a.score,
		Quality:       a.score,
		Safety:        a.score,
		Performance:   a.score,
	}, nil
}

func testSpec() kernel.OptimizationSpec {
	return kernel.OptimizationSpec{
		BaselineMetrics: kernel.NewCodeState("fn main() {}", 100, 200, 50),
		EvolutionRules: []kernel.EvolutionRule{
			{Action: "inline_function", Description: "inline a small helper"},
			{Action: "optimize_hot_paths", Description: "hand-optimize the hot loop"},
		},
	}
}

func newTestController() *Controller {
	spec := testSpec()
	committeeCfg := committee.DefaultConfig()
	mctsCfg := mcts.DefaultConfig()
	mctsCfg.MaxIterations = 20
	return NewController([]kernel.LlmEvaluator{fakeAgent{score: 0.95}}, spec, committeeCfg, mctsCfg, nil, nil)
}

func TestSubmitOptimizationFindsBestAction(t *testing.T) {
	c := newTestController()
	spec := testSpec()

	result, err := c.SubmitOptimization(context.Background(), spec.BaselineMetrics, "reduce latency")
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotEmpty(t, result.BestAction)
	assert.Greater(t, result.TreeSize, 1)
	assert.Greater(t, result.Iterations, 0)
}

func TestSubmitOptimizationRejectsNoAgents(t *testing.T) {
	spec := testSpec()
	c := NewController(nil, spec, committee.DefaultConfig(), mcts.DefaultConfig(), nil, nil)

	result, err := c.SubmitOptimization(context.Background(), spec.BaselineMetrics, "reduce latency")
	require.ErrorIs(t, err, ErrNoAgents)
	assert.True(t, result.IsError)
	assert.Equal(t, spec.BaselineMetrics, result.BestState)
}

func TestSubmitOptimizationNeverPanicsOnCancelledContext(t *testing.T) {
	c := newTestController()
	spec := testSpec()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.SubmitOptimization(ctx, spec.BaselineMetrics, "reduce latency")
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, spec.BaselineMetrics, result.BestState)
}

func TestEvaluateActionDelegatesToCommittee(t *testing.T) {
	c := newTestController()
	spec := testSpec()

	decision, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "inline_function", "reduce latency")
	require.NoError(t, err)
	assert.True(t, decision.MakesProgress)
}

func TestSubscribeEventsFailsWithoutBus(t *testing.T) {
	c := newTestController()
	_, _, err := c.SubscribeEvents()
	require.ErrorIs(t, err, kernel.ErrBusClosed)
}

func TestSubscribeEventsReceivesEvaluationStarted(t *testing.T) {
	bus := kernel.NewEventBus(16, nil, nil)
	spec := testSpec()
	c := NewController([]kernel.LlmEvaluator{fakeAgent{score: 0.95}}, spec, committee.DefaultConfig(), mcts.DefaultConfig(), bus, nil)

	events, unsub, err := c.SubscribeEvents()
	require.NoError(t, err)
	defer unsub()

	_, err = c.EvaluateAction(context.Background(), spec.BaselineMetrics, "inline_function", "reduce latency")
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, kernel.EventEvaluationStarted, evt.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected an event on the bus")
	}
}

func TestSnapshotMetricsAggregatesEveryComponent(t *testing.T) {
	c := newTestController()
	spec := testSpec()

	_, err := c.SubmitOptimization(context.Background(), spec.BaselineMetrics, "reduce latency")
	require.NoError(t, err)

	snap := c.SnapshotMetrics()
	assert.Greater(t, snap.Committee.TotalEvaluations, uint64(0))
	assert.Greater(t, snap.Validation.TotalValidations, 0)
	assert.Equal(t, 1, snap.Search.Samples)
}
