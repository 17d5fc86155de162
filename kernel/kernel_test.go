// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeStatePerformanceScore(t *testing.T) {
	s := NewCodeState("code", 10, 100, 80)
	score := s.PerformanceScore()
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCodeStateCacheKeyStable(t *testing.T) {
	a := NewCodeState("abc", 1, 2, 3)
	b := NewCodeState("abc", 1, 2, 3)
	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestCodeStateUpdateMetricsEMA(t *testing.T) {
	s := NewCodeState("c", 10, 10, 10)
	s.UpdateMetrics(20, 20, 20)
	assert.InDelta(t, 13.0, s.Latency, 1e-9)
}

func TestCacheEvictsZeroAccessEntriesFirst(t *testing.T) {
	c := NewCache(2, nil)
	now := time.Now()
	require.NoError(t, c.Put("a", 1, 0.5, now))
	require.NoError(t, c.Put("b", 2, 0.5, now))
	// Touch "a" so it has a nonzero access count.
	_, ok := c.Get("a")
	require.True(t, ok)

	err := c.Put("c", 3, 0.5, now)
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.LessOrEqual(t, c.Len(), 2)

	_, stillThere := c.Get("a")
	assert.True(t, stillThere, "recently accessed entry should survive eviction")
}

func TestRubricValidate(t *testing.T) {
	r := EvaluationRubric{Objective: "", ScoringGuidelines: map[string]float64{}}
	assert.ErrorIs(t, r.Validate(), ErrEmptyObjective)

	r.Objective = "improve latency"
	assert.ErrorIs(t, r.Validate(), ErrMissingRequiredGuideline)

	r.ScoringGuidelines = map[string]float64{"alignment": 1, "quality": 1, "safety": 1}
	assert.NoError(t, r.Validate())
}

func TestAggregateEvaluationsANDsProgress(t *testing.T) {
	w := DefaultScoringWeights()
	evals := []AgentEvaluation{
		{MakesProgress: true, Confidence: 0.9, Alignment: 1, Quality: 1, Safety: 1, Performance: 1},
		{MakesProgress: false, Confidence: 0.1, Alignment: 0, Quality: 0, Safety: 0, Performance: 0},
	}
	d := AggregateEvaluations(evals, w)
	assert.False(t, d.MakesProgress)
	assert.InDelta(t, 0.5, d.Confidence, 1e-9)
}

func TestEventBusDropsOnFullQueue(t *testing.T) {
	bus := NewEventBus(1, nil, nil)
	ch, unsub, err := bus.Subscribe()
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, bus.Publish(CommitteeEvent{Kind: EventEvaluationStarted, Action: "a"}))
	require.NoError(t, bus.Publish(CommitteeEvent{Kind: EventEvaluationStarted, Action: "b"}))

	first := <-ch
	assert.Equal(t, "a", first.Action)

	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestEventBusClose(t *testing.T) {
	bus := NewEventBus(4, nil, nil)
	bus.Close()
	_, _, err := bus.Subscribe()
	assert.ErrorIs(t, err, ErrBusClosed)
	assert.ErrorIs(t, bus.Publish(CommitteeEvent{}), ErrBusClosed)
}
