// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validator implements the layered action validator: format,
// state-compatibility, spec-compliance, and risk checks over a candidate
// MCTS action, with a short-lived result cache keyed on (action, state
// fingerprint).
package validator

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// ValidationResult is the layered outcome of validating one action against
// one CodeState.
type ValidationResult struct {
	Action    string
	IsValid   bool
	Errors    []string
	Warnings  []string
	Info      []string
	RiskScore float64
	Timestamp time.Time
}

func newResult(action string) ValidationResult {
	return ValidationResult{Action: action, IsValid: true, Timestamp: time.Now()}
}

func (r *ValidationResult) addError(msg string)   { r.Errors = append(r.Errors, msg); r.IsValid = false }
func (r *ValidationResult) addWarning(msg string) { r.Warnings = append(r.Warnings, msg) }
func (r *ValidationResult) addInfo(msg string)     { r.Info = append(r.Info, msg) }

// freshAt reports whether the result is still within the 10-minute cache
// validity window as of now.
func (r ValidationResult) freshAt(now time.Time) bool {
	return now.Sub(r.Timestamp) < 10*time.Minute
}

// Summary renders a one-line human-readable report.
func (r ValidationResult) Summary() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}
	return "action " + r.Action + ": " + status
}

// ValidationStats counts validations (cache hits included), valid and
// invalid outcomes, and errors by action category.
type ValidationStats struct {
	TotalValidations int
	ValidActions     int
	InvalidActions   int
	ErrorsByCategory map[string]int
}

// Validator runs the layered checks against a fixed OptimizationSpec,
// caching results per (action, state) fingerprint for 10 minutes.
type Validator struct {
	spec kernel.OptimizationSpec

	mu    sync.Mutex
	cache map[string]ValidationResult
	stats ValidationStats
}

// New constructs a Validator bound to spec.
func New(spec kernel.OptimizationSpec) *Validator {
	return &Validator{
		spec:  spec,
		cache: make(map[string]ValidationResult),
		stats: ValidationStats{ErrorsByCategory: make(map[string]int)},
	}
}

// Validate runs every layered check for action against state, returning a
// cached result when one is still fresh.
func (v *Validator) Validate(action string, state kernel.CodeState) ValidationResult {
	key := action + "_" + state.CacheKey()

	v.mu.Lock()
	if cached, ok := v.cache[key]; ok && cached.freshAt(time.Now()) {
		v.stats.TotalValidations++
		v.mu.Unlock()
		return cached
	}
	v.mu.Unlock()

	result := newResult(action)
	v.validateFormat(action, &result)
	v.validateStateCompatibility(action, state, &result)
	v.validateSpecCompliance(action, state, &result)
	v.validateRisk(action, state, &result)

	v.mu.Lock()
	v.cache[key] = result
	v.stats.TotalValidations++
	if result.IsValid {
		v.stats.ValidActions++
	} else {
		v.stats.InvalidActions++
		for range result.Errors {
			v.stats.ErrorsByCategory[categorize(action)]++
		}
	}
	v.mu.Unlock()

	return result
}

func categorize(action string) string {
	switch {
	case strings.Contains(action, "memory"):
		return "memory"
	case strings.Contains(action, "latency"):
		return "latency"
	case strings.Contains(action, "parallelize"):
		return "parallelization"
	default:
		return "general"
	}
}

// validateFormat enforces non-empty, <=100 chars, [A-Za-z0-9_] only, and
// warns on an unrecognized action prefix.
func (v *Validator) validateFormat(action string, result *ValidationResult) {
	if action == "" {
		result.addError("action name cannot be empty")
		return
	}
	if len(action) > 100 {
		result.addError("action name exceeds 100 characters")
	}
	for _, r := range action {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			result.addError("action name contains invalid characters")
			break
		}
	}
	if !kernel.HasKnownPrefix(action) {
		result.addWarning("unknown action pattern: " + action)
	}
}

// validateStateCompatibility warns on limited-impact actions and errors on
// conflicts with an already-applied action.
func (v *Validator) validateStateCompatibility(action string, state kernel.CodeState, result *ValidationResult) {
	if strings.Contains(action, "memory") && state.Memory < 0.1 {
		result.addWarning("memory optimization may have limited impact on low-memory state")
	}
	if strings.Contains(action, "latency") && state.Latency < 0.1 {
		result.addWarning("latency optimization may have limited impact on low-latency state")
	}
	if strings.Contains(action, "parallelize") && state.Metadata.ParallelizationLevel > 0.8 {
		result.addWarning("state is already highly parallelized")
	}
	for _, existing := range state.Metadata.AppliedActions {
		if kernel.ActionsConflict(action, existing) {
			result.addError("action conflicts with previously applied action: " + existing)
		}
	}
	if state.Metadata.OptimizationLevel > 0.9 && strings.Contains(action, "aggressive") {
		result.addWarning("state is already highly optimized, aggressive actions may have diminishing returns")
	}
}

// validateSpecCompliance projects the action's estimated delta and rejects
// it if it would exceed the spec's content-restriction caps.
func (v *Validator) validateSpecCompliance(action string, state kernel.CodeState, result *ValidationResult) {
	baseline := v.spec.BaselineMetrics
	restrictions := v.spec.ContentType.Restrictions

	if strings.Contains(action, "latency") {
		newLatency := state.Latency * (1.0 + kernel.EstimateLatencyImpact(action))
		if newLatency > baseline.Latency*(1.0+restrictions.MaxLatencyIncrease/100.0) {
			result.addError("action would exceed maximum allowed latency increase")
		}
	}
	if strings.Contains(action, "memory") {
		newMemory := state.Memory * (1.0 + kernel.EstimateMemoryImpact(action))
		if newMemory > baseline.Memory*(1.0+restrictions.MaxMemoryIncrease/100.0) {
			result.addError("action would exceed maximum allowed memory increase")
		}
	}
	for _, rule := range v.spec.EvolutionRules {
		if !actionCompliesWithRule(action, rule) {
			result.addWarning("action may not comply with evolution rule: " + rule.Action)
		}
	}
}

func actionCompliesWithRule(action string, rule kernel.EvolutionRule) bool {
	switch rule.Action {
	case "performance_first":
		return strings.Contains(action, "optimize") || strings.Contains(action, "improve")
	case "memory_constrained":
		return !strings.Contains(action, "increase_memory") && !strings.Contains(action, "sacrifice_memory")
	case "latency_critical":
		return !strings.Contains(action, "increase_latency") && !strings.Contains(action, "sacrifice_speed")
	case "maintainability_required":
		return !strings.Contains(action, "sacrifice") && !strings.Contains(action, "extreme")
	default:
		return true
	}
}

// validateRisk scores the action's inherent risk and rejects it if the
// cumulative risk (state + action) would exceed 0.7.
func (v *Validator) validateRisk(action string, state kernel.CodeState, result *ValidationResult) {
	risk := 0.0
	if strings.Contains(action, "aggressive") {
		risk += 0.3
		result.addWarning("aggressive optimization carries higher risk")
	}
	if strings.Contains(action, "extreme") {
		risk += 0.4
		result.addWarning("extreme optimization may impact maintainability")
	}
	if strings.Contains(action, "sacrifice") {
		risk += 0.5
		result.addError("action explicitly sacrifices code quality")
	}
	if strings.Contains(action, "assembly") || strings.Contains(action, "unsafe") {
		risk += 0.6
		result.addError("action involves unsafe or low-level operations")
	}

	total := state.Metadata.RiskLevel + risk
	switch {
	case total > 0.7:
		result.addError("cumulative risk level would be too high")
	case total > 0.5:
		result.addWarning("cumulative risk level is getting high")
	}
	result.RiskScore = risk
}

// Stats returns a snapshot of the validator's cache/outcome counters.
func (v *Validator) Stats() ValidationStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	byCategory := make(map[string]int, len(v.stats.ErrorsByCategory))
	for k, n := range v.stats.ErrorsByCategory {
		byCategory[k] = n
	}
	return ValidationStats{
		TotalValidations: v.stats.TotalValidations,
		ValidActions:     v.stats.ValidActions,
		InvalidActions:   v.stats.InvalidActions,
		ErrorsByCategory: byCategory,
	}
}

// ClearCache discards every cached validation result.
func (v *Validator) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache = make(map[string]ValidationResult)
}
