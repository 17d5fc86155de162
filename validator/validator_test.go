// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetmcp/cognitive-core/kernel"
)

func testSpec() kernel.OptimizationSpec {
	spec := kernel.OptimizationSpec{
		BaselineMetrics: kernel.NewCodeState("fn main() {}", 100, 200, 50),
	}
	spec.ContentType.Restrictions = kernel.ContentRestrictions{MaxLatencyIncrease: 10, MaxMemoryIncrease: 10}
	return spec
}

func TestValidateRejectsEmptyAction(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)
	result := v.Validate("", state)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "action name cannot be empty")
}

func TestValidateRejectsOverlongName(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)
	longName := "optimize_"
	for len(longName) <= 100 {
		longName += "x"
	}
	result := v.Validate(longName, state)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "action name exceeds 100 characters")
}

func TestValidateWarnsOnUnknownPrefix(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)
	result := v.Validate("frobnicate_the_widget", state)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateRejectsConflictingAction(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)
	state.Metadata.AppliedActions = []string{"optimize_memory_layout"}

	result := v.Validate("sacrifice_memory_for_speed", state)
	assert.False(t, result.IsValid)
}

func TestValidateRejectsLatencyBeyondRestriction(t *testing.T) {
	spec := testSpec()
	v := New(spec)
	// baseline latency 100, restriction 10% -> cap at 110. The action
	// matches the "memory" delta (+2%), so starting at 108 crosses the cap.
	state := kernel.NewCodeState("x", 108, 200, 50)
	result := v.Validate("reduce_latency_with_memory_pressure", state)
	assert.False(t, result.IsValid)
}

func TestValidateCumulativeRiskRejectsAboveThreshold(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)
	state.Metadata.RiskLevel = 0.5

	result := v.Validate("aggressive_extreme_refactor", state)
	assert.False(t, result.IsValid)
	require.GreaterOrEqual(t, result.RiskScore, 0.7)
}

func TestValidateCachesResult(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)

	first := v.Validate("optimize_hot_paths", state)
	second := v.Validate("optimize_hot_paths", state)
	assert.Equal(t, first.Timestamp, second.Timestamp)

	stats := v.Stats()
	assert.Equal(t, 2, stats.TotalValidations)
}

func TestClearCacheForcesRevalidation(t *testing.T) {
	v := New(testSpec())
	state := kernel.NewCodeState("x", 100, 200, 50)

	first := v.Validate("optimize_hot_paths", state)
	v.ClearCache()
	second := v.Validate("optimize_hot_paths", state)
	assert.NotEqual(t, first.Timestamp, second.Timestamp)
}
