// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingWindowSnapshotPercentiles(t *testing.T) {
	w := NewRollingWindow(32, nil)
	for _, ms := range []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		w.Observe(time.Duration(ms) * time.Millisecond)
	}
	snap := w.Snapshot()
	assert.Equal(t, 10, snap.Samples)
	assert.Equal(t, 55*time.Millisecond, snap.Average)
	assert.True(t, snap.P50 <= snap.P90)
	assert.True(t, snap.P90 <= snap.P99)
}

func TestRollingWindowCapsAtCapacity(t *testing.T) {
	w := NewRollingWindow(4, nil)
	for i := 0; i < 10; i++ {
		w.Observe(time.Duration(i) * time.Millisecond)
	}
	snap := w.Snapshot()
	assert.Equal(t, 4, snap.Samples)
}

func TestRollingWindowEmptySnapshot(t *testing.T) {
	w := NewRollingWindow(8, nil)
	snap := w.Snapshot()
	assert.Equal(t, 0, snap.Samples)
	assert.Equal(t, GradeF, snap.Grade)
}

func TestCompareInsufficientSamples(t *testing.T) {
	baseline := NewRollingWindow(32, nil)
	current := NewRollingWindow(32, nil)
	baseline.Observe(10 * time.Millisecond)
	current.Observe(10 * time.Millisecond)

	_, err := Compare(baseline.Snapshot(), current.Snapshot(), 5)
	require.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestCompareDetectsRegression(t *testing.T) {
	baseline := NewRollingWindow(32, nil)
	current := NewRollingWindow(32, nil)
	for i := 0; i < 10; i++ {
		baseline.Observe(10 * time.Millisecond)
		current.Observe(20 * time.Millisecond)
	}

	cmp, err := Compare(baseline.Snapshot(), current.Snapshot(), 5)
	require.NoError(t, err)
	assert.Equal(t, RegressionSignificant, cmp.Regression.Status)
	assert.Contains(t, cmp.Regression.AffectedMetrics, "latency")
	assert.Equal(t, VerdictCritical, cmp.Verdict())
}

func TestCompareDetectsImprovement(t *testing.T) {
	baseline := NewRollingWindow(32, nil)
	current := NewRollingWindow(32, nil)
	for i := 0; i < 10; i++ {
		baseline.Observe(20 * time.Millisecond)
		current.Observe(8 * time.Millisecond)
	}

	cmp, err := Compare(baseline.Snapshot(), current.Snapshot(), 5)
	require.NoError(t, err)
	assert.Equal(t, ImprovementSignificant, cmp.Improvement.Status)
	assert.Equal(t, VerdictExcellent, cmp.Verdict())
}

func TestComparisonRecommendationsMentionRegression(t *testing.T) {
	baseline := NewRollingWindow(32, nil)
	current := NewRollingWindow(32, nil)
	for i := 0; i < 10; i++ {
		baseline.Observe(10 * time.Millisecond)
		current.Observe(25 * time.Millisecond)
	}
	cmp, err := Compare(baseline.Snapshot(), current.Snapshot(), 5)
	require.NoError(t, err)
	recs := cmp.Recommendations()
	require.NotEmpty(t, recs)
}
