// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for _, cfg := range []Config{Default(), Performance(), Accuracy(), SystemOptimized(), Minimal()} {
		assert.NoError(t, cfg.Validate())
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.DecoherenceThreshold = 5
	assert.Error(t, cfg.Validate())
}

func TestBuilderClampsOutOfRangeInputs(t *testing.T) {
	cfg, err := NewBuilder().
		Parallelism().MaxQuantumParallel(999).Done().
		Thresholds().DecoherenceThreshold(-1).Done().
		Build()
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.MaxQuantumParallel)
	assert.Equal(t, 0.001, cfg.DecoherenceThreshold)
}

func TestFromPresetSystemOptimizedScalesWithCPUs(t *testing.T) {
	cfg := FromPreset(PresetSystemOptimized)
	built, err := cfg.Build()
	require.NoError(t, err)
	assert.True(t, built.MaxQuantumParallel >= 1 && built.MaxQuantumParallel <= 128)
}

func TestEnvironmentPresetsBuildSuccessfully(t *testing.T) {
	for _, build := range []func() (Config, error){ForRealTime, ForBatchProcessing, ForMobile, ForHPC} {
		cfg, err := build()
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate())
	}
}
