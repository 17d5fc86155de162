// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package quantumconfig holds the validated, clamped tunables for the
// quantum MCTS engine (C7) and its entanglement overlay (C6).
package quantumconfig

import (
	"fmt"
	"runtime"
)

// Config bundles every quantum-engine tunable, each held to the range
// named alongside it.
type Config struct {
	MaxQuantumParallel   int     // [1,128]
	QuantumExploration   float64 // [0.1,10]
	DecoherenceThreshold float64 // [0.001,1]
	EntanglementStrength float64 // [0,1]
	RecursiveIterations  int     // [1,20]
	AmplitudeThreshold   float64 // [1e-4,1]
	PhaseEvolutionRate   float64 // [1e-3,1]
	SimulationTimeoutMs  int64   // [100,3.6e6]
	MaxTreeSize          int     // [10,1e7]
	MeasurementPrecision float64 // [1e-15,1]
}

// Default returns the balanced baseline configuration.
func Default() Config {
	return Config{
		MaxQuantumParallel:   8,
		QuantumExploration:   1.41421356237,
		DecoherenceThreshold: 0.1,
		EntanglementStrength: 0.5,
		RecursiveIterations:  5,
		AmplitudeThreshold:   0.01,
		PhaseEvolutionRate:   0.05,
		SimulationTimeoutMs:  30000,
		MaxTreeSize:          100000,
		MeasurementPrecision: 1e-6,
	}
}

// Performance favors throughput: wider parallelism, looser decoherence,
// shorter timeouts.
func Performance() Config {
	c := Default()
	c.MaxQuantumParallel = 32
	c.QuantumExploration = 2.5
	c.DecoherenceThreshold = 0.2
	c.SimulationTimeoutMs = 5000
	c.MaxTreeSize = 50000
	return c
}

// Accuracy favors search quality: tighter decoherence, finer measurement
// precision, more recursive improvement rounds.
func Accuracy() Config {
	c := Default()
	c.QuantumExploration = 1.0
	c.DecoherenceThreshold = 0.05
	c.RecursiveIterations = 15
	c.AmplitudeThreshold = 0.001
	c.MeasurementPrecision = 1e-9
	c.SimulationTimeoutMs = 120000
	return c
}

// SystemOptimized scales parallelism to the host's logical CPU count.
func SystemOptimized() Config {
	c := Default()
	c.MaxQuantumParallel = clampInt(runtime.NumCPU()*2, 1, 128)
	return c
}

// Minimal is the cheapest viable configuration, for constrained hosts or
// smoke tests.
func Minimal() Config {
	return Config{
		MaxQuantumParallel:   1,
		QuantumExploration:   1.0,
		DecoherenceThreshold: 0.3,
		EntanglementStrength: 0.2,
		RecursiveIterations:  1,
		AmplitudeThreshold:   0.1,
		PhaseEvolutionRate:   0.1,
		SimulationTimeoutMs:  1000,
		MaxTreeSize:          100,
		MeasurementPrecision: 1e-3,
	}
}

// Validate reports every range violation in c, nil if c is fully valid.
func (c Config) Validate() error {
	type bound struct {
		name       string
		value      float64
		min, max   float64
	}
	bounds := []bound{
		{"max_quantum_parallel", float64(c.MaxQuantumParallel), 1, 128},
		{"quantum_exploration", c.QuantumExploration, 0.1, 10},
		{"decoherence_threshold", c.DecoherenceThreshold, 0.001, 1},
		{"entanglement_strength", c.EntanglementStrength, 0, 1},
		{"recursive_iterations", float64(c.RecursiveIterations), 1, 20},
		{"amplitude_threshold", c.AmplitudeThreshold, 1e-4, 1},
		{"phase_evolution_rate", c.PhaseEvolutionRate, 1e-3, 1},
		{"simulation_timeout_ms", float64(c.SimulationTimeoutMs), 100, 3.6e6},
		{"max_tree_size", float64(c.MaxTreeSize), 10, 1e7},
		{"measurement_precision", c.MeasurementPrecision, 1e-15, 1},
	}
	for _, b := range bounds {
		if b.value < b.min || b.value > b.max {
			return fmt.Errorf("quantumconfig: %s=%v out of range [%v,%v]", b.name, b.value, b.min, b.max)
		}
	}
	return nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
