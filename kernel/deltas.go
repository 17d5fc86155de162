// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "strings"

// EstimateLatencyImpact maps an action name to its expected fractional
// change in latency. Shared by the Action Validator (spec compliance check)
// and the classical MCTS action-application step, so both agree on one
// table instead of each hard-coding its own magic numbers.
func EstimateLatencyImpact(action string) float64 {
	switch {
	case strings.Contains(action, "aggressive_latency"):
		return -0.5
	case strings.Contains(action, "optimize_hot_paths"):
		return -0.3
	case strings.Contains(action, "reduce_io"):
		return -0.25
	case strings.Contains(action, "parallelize"):
		return -0.4
	case strings.Contains(action, "inline"):
		return -0.05
	case strings.Contains(action, "simd"):
		return -0.4
	case strings.Contains(action, "caching"):
		return -0.3
	case strings.Contains(action, "memory"):
		return 0.02
	default:
		return 0.0
	}
}

// EstimateMemoryImpact maps an action name to its expected fractional
// change in memory usage, mirroring EstimateLatencyImpact.
func EstimateMemoryImpact(action string) float64 {
	switch {
	case strings.Contains(action, "aggressive_memory"):
		return -0.4
	case strings.Contains(action, "zero_allocation"):
		return -0.5
	case strings.Contains(action, "optimize_memory"):
		return -0.1
	case strings.Contains(action, "parallelize"):
		return 0.2
	case strings.Contains(action, "caching"):
		return 0.3
	case strings.Contains(action, "inline"):
		return 0.1
	default:
		return 0.0
	}
}

// KnownActionPrefixes is the set of recognized action-name prefixes; an
// action matching none of them is still valid but earns a warning.
var KnownActionPrefixes = []string{
	"optimize_", "reduce_", "improve_", "parallelize_", "inline_",
	"batch_", "add_", "enable_", "implement_", "aggressive_",
	"zero_", "lock_free", "custom_", "micro_", "eliminate_",
}

// ConflictingActionPair is one mutually-exclusive pair of action substrings.
type ConflictingActionPair struct {
	A, B string
}

// ConflictingActionPairs enumerates action substrings that can never both
// apply to the same CodeState.
var ConflictingActionPairs = []ConflictingActionPair{
	{"optimize_memory", "sacrifice_memory"},
	{"reduce_latency", "sacrifice_speed"},
	{"improve_accuracy", "sacrifice_accuracy"},
	{"zero_allocation", "increase_allocation"},
	{"lock_free", "add_locking"},
}

// ActionsConflict reports whether a and b match opposite sides of any
// ConflictingActionPairs entry.
func ActionsConflict(a, b string) bool {
	for _, pair := range ConflictingActionPairs {
		if (strings.Contains(a, pair.A) && strings.Contains(b, pair.B)) ||
			(strings.Contains(a, pair.B) && strings.Contains(b, pair.A)) {
			return true
		}
	}
	return false
}

// HasKnownPrefix reports whether action starts with a recognized prefix.
func HasKnownPrefix(action string) bool {
	for _, p := range KnownActionPrefixes {
		if strings.HasPrefix(action, p) {
			return true
		}
	}
	return false
}

// ApplyAction returns a new CodeState reflecting the estimated latency and
// memory deltas of applying action, recording it in the applied-actions
// history and the optimization/risk posture used by later validations.
func ApplyAction(s CodeState, action string, riskDelta float64) CodeState {
	next := s.Clone()
	next.Latency = s.Latency * (1.0 + EstimateLatencyImpact(action))
	next.Memory = s.Memory * (1.0 + EstimateMemoryImpact(action))
	next.Metadata.AppliedActions = append(next.Metadata.AppliedActions, action)
	next.Metadata.RiskLevel = clamp01(s.Metadata.RiskLevel + riskDelta)
	if strings.Contains(action, "parallelize") {
		next.Metadata.ParallelizationLevel = clamp01(s.Metadata.ParallelizationLevel + 0.2)
	}
	if strings.Contains(action, "optimize") || strings.Contains(action, "improve") {
		next.Metadata.OptimizationLevel = clamp01(s.Metadata.OptimizationLevel + 0.1)
	}
	return next
}
