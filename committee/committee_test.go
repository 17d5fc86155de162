// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sweetmcp/cognitive-core/kernel"
)

type fakeEvaluator struct {
	name  string
	score float64
	progress bool
	delay time.Duration
}

func (f fakeEvaluator) Evaluate(ctx context.Context, state kernel.CodeState, action string, rubric kernel.EvaluationRubric, phase string, prior []kernel.AgentEvaluation, hint kernel.SteeringHint) (kernel.AgentEvaluation, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return kernel.AgentEvaluation{}, ctx.Err()
		}
	}
	return kernel.AgentEvaluation{
		Agent:         f.name,
		MakesProgress: f.progress,
		Confidence:    f.score,
		Alignment:     f.score,
		Quality:       f.score,
		Safety:        f.score,
		Performance:   f.score,
	}, nil
}

// hintRecordingEvaluator records the SteeringHint it was fed on each call,
// keyed by phase, so a test can assert Refine actually received one.
type hintRecordingEvaluator struct {
	score     float64
	progress  bool
	hintsSeen map[string]kernel.SteeringHint
}

func (f *hintRecordingEvaluator) Evaluate(ctx context.Context, state kernel.CodeState, action string, rubric kernel.EvaluationRubric, phase string, prior []kernel.AgentEvaluation, hint kernel.SteeringHint) (kernel.AgentEvaluation, error) {
	if f.hintsSeen == nil {
		f.hintsSeen = map[string]kernel.SteeringHint{}
	}
	f.hintsSeen[phase] = hint
	return kernel.AgentEvaluation{
		Agent:         "recorder",
		MakesProgress: f.progress,
		Confidence:    f.score,
		Alignment:     f.score,
		Quality:       f.score,
		Safety:        f.score,
		Performance:   f.score,
	}, nil
}

func testSpec() kernel.OptimizationSpec {
	return kernel.OptimizationSpec{
		BaselineMetrics: kernel.NewCodeState("fn main() {}", 10, 100, 50),
		EvolutionRules: []kernel.EvolutionRule{
			{Action: "inline_function", Description: "inline a small helper"},
		},
	}
}

func TestEvaluateActionReachesEarlyConsensus(t *testing.T) {
	agents := []kernel.LlmEvaluator{
		fakeEvaluator{name: "a1", score: 0.95, progress: true},
		fakeEvaluator{name: "a2", score: 0.9, progress: true},
	}
	c := New(agents, DefaultConfig(), nil, nil)

	decision, err := c.EvaluateAction(context.Background(), testSpec().BaselineMetrics, "inline_function", testSpec(), "reduce latency")
	require.NoError(t, err)
	assert.True(t, decision.MakesProgress)
	assert.Equal(t, 1, decision.Rounds)
	assert.GreaterOrEqual(t, decision.OverallScore, DefaultConfig().ConsensusThreshold)
}

func TestEvaluateActionRunsAllPhasesWithoutConsensus(t *testing.T) {
	// progress=false keeps steeringHint's ShouldContinue true past Review,
	// so the round proceeds all the way to Refine.
	agents := []kernel.LlmEvaluator{
		fakeEvaluator{name: "a1", score: 0.3, progress: false},
		fakeEvaluator{name: "a2", score: 0.2, progress: false},
	}
	c := New(agents, DefaultConfig(), nil, nil)

	decision, err := c.EvaluateAction(context.Background(), testSpec().BaselineMetrics, "inline_function", testSpec(), "reduce latency")
	require.NoError(t, err)
	assert.Equal(t, 3, decision.Rounds)
	assert.Less(t, decision.OverallScore, DefaultConfig().ConsensusThreshold)
}

func TestEvaluateActionUsesCacheOnSecondCall(t *testing.T) {
	agents := []kernel.LlmEvaluator{fakeEvaluator{name: "a1", score: 0.95, progress: true}}
	c := New(agents, DefaultConfig(), nil, nil)
	spec := testSpec()

	_, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "inline_function", spec, "reduce latency")
	require.NoError(t, err)

	second, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "inline_function", spec, "reduce latency")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
}

func TestEvaluateActionRejectsEmptyObjective(t *testing.T) {
	agents := []kernel.LlmEvaluator{fakeEvaluator{name: "a1", score: 0.9, progress: true}}
	c := New(agents, DefaultConfig(), nil, nil)

	_, err := c.EvaluateAction(context.Background(), testSpec().BaselineMetrics, "inline_function", testSpec(), "")
	require.ErrorIs(t, err, kernel.ErrEmptyObjective)
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CircuitFailures = 1
	cfg.TimeoutBase = 5 * time.Millisecond
	cfg.TimeoutStrategy = TimeoutFixed

	agents := []kernel.LlmEvaluator{fakeEvaluator{name: "slow", score: 0.9, progress: true, delay: 50 * time.Millisecond}}
	c := New(agents, cfg, nil, nil)
	spec := testSpec()

	_, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "action_one", spec, "reduce latency")
	require.NoError(t, err) // timeout folds into a fallback evaluation, not a round error

	assert.Equal(t, CircuitOpen, c.breaker.State())

	_, err = c.EvaluateAction(context.Background(), spec.BaselineMetrics, "action_two", spec, "reduce latency")
	require.ErrorIs(t, err, ErrCircuitOpen)
}

func TestStatsTrackEvaluationsAndEarlyConsensus(t *testing.T) {
	agents := []kernel.LlmEvaluator{fakeEvaluator{name: "a1", score: 0.95, progress: true}}
	c := New(agents, DefaultConfig(), nil, nil)
	spec := testSpec()

	_, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "action_one", spec, "reduce latency")
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.TotalEvaluations)
	assert.Equal(t, uint64(1), stats.EarlyConsensusCount)
}

func TestRefineRoundReceivesSteeringHint(t *testing.T) {
	recorder := &hintRecordingEvaluator{score: 0.3, progress: false}
	agents := []kernel.LlmEvaluator{recorder}
	c := New(agents, DefaultConfig(), nil, nil)

	_, err := c.EvaluateAction(context.Background(), testSpec().BaselineMetrics, "inline_function", testSpec(), "reduce latency")
	require.NoError(t, err)

	assert.Equal(t, kernel.SteeringHint{}, recorder.hintsSeen[string(PhaseInitial)])
	assert.Equal(t, kernel.SteeringHint{}, recorder.hintsSeen[string(PhaseReview)])

	refineHint := recorder.hintsSeen[string(PhaseRefine)]
	assert.True(t, refineHint.ShouldContinue)
	assert.NotEmpty(t, refineHint.Message)
}

func TestEvaluateActionPublishesToTelemetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockTelemetry := NewMockTelemetry(ctrl)
	// One round: evaluation-started, phase-completed, early-consensus, final-decision.
	mockTelemetry.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	agents := []kernel.LlmEvaluator{
		fakeEvaluator{name: "a1", score: 0.95, progress: true},
		fakeEvaluator{name: "a2", score: 0.9, progress: true},
	}
	c := New(agents, DefaultConfig(), nil, nil)
	c.SetTelemetry(mockTelemetry)

	spec := testSpec()
	_, err := c.EvaluateAction(context.Background(), spec.BaselineMetrics, "inline_function", spec, "reduce latency")
	require.NoError(t, err)
}
