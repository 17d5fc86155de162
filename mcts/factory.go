// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcts

import "time"

// OptimizationProfile names a Controller configuration preset, carried
// alongside a run so benchmark comparisons can report which profile
// produced it.
type OptimizationProfile int

const (
	ProfileSpeed OptimizationProfile = iota
	ProfileQuality
	ProfileBalanced
	ProfileMemoryOptimized
	ProfileRealtime
	ProfileBatchProcessing
	ProfileCustom
)

func (p OptimizationProfile) String() string {
	switch p {
	case ProfileSpeed:
		return "speed"
	case ProfileQuality:
		return "quality"
	case ProfileMemoryOptimized:
		return "memory_optimized"
	case ProfileRealtime:
		return "realtime"
	case ProfileBatchProcessing:
		return "batch_processing"
	case ProfileCustom:
		return "custom"
	default:
		return "balanced"
	}
}

// Config bundles the Controller's tunables.
type Config struct {
	Profile             OptimizationProfile
	ExplorationConstant float64
	MaxIterations       uint64
	Timeout             time.Duration // zero means no wall-clock limit
	MinVisitsForPrune   uint32
}

// DefaultConfig is the Balanced preset: exploration sqrt(2), 10k
// iterations, no timeout.
func DefaultConfig() Config {
	return Config{
		Profile:             ProfileBalanced,
		ExplorationConstant: 1.41421356237,
		MaxIterations:       10000,
		MinVisitsForPrune:   10,
	}
}

// presets holds the fixed constants for every named profile other than
// Balanced (which is DefaultConfig) and Custom (which is caller-supplied).
var presets = map[OptimizationProfile]Config{
	ProfileSpeed:           {Profile: ProfileSpeed, ExplorationConstant: 2.0, MaxIterations: 5000, Timeout: 60 * time.Second, MinVisitsForPrune: 10},
	ProfileQuality:         {Profile: ProfileQuality, ExplorationConstant: 1.0, MaxIterations: 50000, Timeout: 1800 * time.Second, MinVisitsForPrune: 10},
	ProfileMemoryOptimized: {Profile: ProfileMemoryOptimized, ExplorationConstant: 1.5, MaxIterations: 10000, Timeout: 300 * time.Second, MinVisitsForPrune: 10},
	ProfileRealtime:        {Profile: ProfileRealtime, ExplorationConstant: 3.0, MaxIterations: 1000, Timeout: 10 * time.Second, MinVisitsForPrune: 10},
	ProfileBatchProcessing: {Profile: ProfileBatchProcessing, ExplorationConstant: 0.7, MaxIterations: 100000, Timeout: 3600 * time.Second, MinVisitsForPrune: 10},
}

// Factory builds Controller configs from a named profile or from adaptive
// performance requirements.
type Factory struct{}

// Build returns the Config for a named profile. ProfileBalanced returns
// DefaultConfig; ProfileCustom returns DefaultConfig as a starting point
// for the caller to override.
func (Factory) Build(profile OptimizationProfile) Config {
	if cfg, ok := presets[profile]; ok {
		return cfg
	}
	cfg := DefaultConfig()
	cfg.Profile = profile
	return cfg
}

// PerformanceRequirements describes the caller's latency/memory/quality
// constraints, consumed by BuildAdaptive to pick a Config.
type PerformanceRequirements struct {
	MaxLatencyMs      uint64
	MemoryLimitMB     uint64
	QualityPriority   bool
	IsBatchWorkload   bool
	RequiresRealtime  bool
}

// DefaultPerformanceRequirements matches the original's moderate defaults.
func DefaultPerformanceRequirements() PerformanceRequirements {
	return PerformanceRequirements{MaxLatencyMs: 1000, MemoryLimitMB: 1024}
}

// BuildAdaptive derives a Config from PerformanceRequirements instead of a
// named preset, scaling exploration/iterations/timeout with the latency
// budget.
func (Factory) BuildAdaptive(req PerformanceRequirements) Config {
	var exploration float64
	var maxIterations uint64
	var timeout time.Duration

	switch {
	case req.MaxLatencyMs < 100:
		exploration = 3.0
		maxIterations = 500
		timeout = 50 * time.Millisecond
	case req.MaxLatencyMs < 1000:
		exploration = 2.0
		maxIterations = 2000
		timeout = time.Duration(req.MaxLatencyMs) * time.Millisecond
	case req.QualityPriority:
		exploration = 1.0
		maxIterations = 50000
		timeout = time.Duration(minUint64(req.MaxLatencyMs, 300000)) * time.Millisecond
	default:
		exploration = 1.41421356237
		maxIterations = 10000
		timeout = time.Duration(minUint64(req.MaxLatencyMs, 300000)) * time.Millisecond
	}

	return Config{Profile: ProfileCustom, ExplorationConstant: exploration, MaxIterations: maxIterations, Timeout: timeout, MinVisitsForPrune: 10}
}

// RecommendProfile suggests a named profile for the given requirements,
// without committing to its exact constants (use Build(profile) for that).
func (Factory) RecommendProfile(req PerformanceRequirements) OptimizationProfile {
	switch {
	case req.MaxLatencyMs < 100:
		return ProfileRealtime
	case req.MaxLatencyMs < 1000:
		return ProfileSpeed
	case req.QualityPriority:
		return ProfileQuality
	case req.MemoryLimitMB < 512:
		return ProfileMemoryOptimized
	case req.IsBatchWorkload:
		return ProfileBatchProcessing
	default:
		return ProfileBalanced
	}
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
