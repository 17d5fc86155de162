// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/sweetmcp/cognitive-core/quantum"
)

// AmplifierConfig holds the adaptive thresholds an amplification pass
// reads and nudges.
type AmplifierConfig struct {
	BaseThreshold     float64
	BaseAmplification float64
	MaxAmplification  float64
	ConvergenceBoost  float64
	LearningRate      float64
	AdaptiveThreshold bool
}

// DefaultAmplifierConfig matches the original's defaults.
func DefaultAmplifierConfig() AmplifierConfig {
	return AmplifierConfig{
		BaseThreshold:     0.5,
		BaseAmplification: 1.2,
		MaxAmplification:  3.0,
		ConvergenceBoost:  0.5,
		LearningRate:      0.1,
		AdaptiveThreshold: true,
	}
}

// AmplificationOperation records one node's amplification for reporting.
type AmplificationOperation struct {
	NodeID               string
	OriginalAmplitude    float64
	NewAmplitude         float64
	AmplificationFactor  float64
	Score                float64
}

// AmplificationResult is the outcome of one amplify_promising_nodes pass.
type AmplificationResult struct {
	NodesProcessed         int
	NodesAmplified         int
	AverageAmplification   float64
	TotalAmplification     float64
	ProcessingTime         time.Duration
	Operations             []AmplificationOperation
	ConvergenceScore       float64
	ThresholdUsed          float64
}

// EmptyAmplificationResult is returned when there is nothing to amplify.
func EmptyAmplificationResult() AmplificationResult {
	return AmplificationResult{AverageAmplification: 1.0}
}

// AmplificationRatio is the fraction of processed nodes that were amplified.
func (r AmplificationResult) AmplificationRatio() float64 {
	if r.NodesProcessed == 0 {
		return 0
	}
	return float64(r.NodesAmplified) / float64(r.NodesProcessed)
}

// Effectiveness combines ratio, average factor, and convergence into one
// figure driving adaptation.
func (r AmplificationResult) Effectiveness() float64 {
	return r.AmplificationRatio() * r.AverageAmplification * r.ConvergenceScore
}

// ProcessingSpeed is nodes processed per second.
func (r AmplificationResult) ProcessingSpeed() float64 {
	secs := r.ProcessingTime.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.NodesProcessed) / secs
}

// AmplificationPerformance is the slice of a result fed into AdaptationStats.
type AmplificationPerformance struct {
	AmplificationRatio float64
	Effectiveness      float64
	ProcessingTime     time.Duration
	ConvergenceScore   float64
}

// AdaptationStats tracks a rolling adaptationFactor nudged by recent
// amplification effectiveness.
type AdaptationStats struct {
	TotalAdaptations uint64
	SuccessRate      float64
	AvgImprovement   float64
	adaptationFactor float64
}

// NewAdaptationStats starts with a neutral adaptation factor of 1.0.
func NewAdaptationStats() AdaptationStats {
	return AdaptationStats{adaptationFactor: 1.0}
}

// Update folds in one AmplificationPerformance sample, nudging the
// adaptation factor within [0.5, 1.5] and the rolling success rate.
func (s *AdaptationStats) Update(perf AmplificationPerformance) {
	s.TotalAdaptations++
	switch {
	case perf.Effectiveness > 0.7:
		s.adaptationFactor = math.Min(s.adaptationFactor*1.05, 1.5)
	case perf.Effectiveness < 0.4:
		s.adaptationFactor = math.Max(s.adaptationFactor*0.95, 0.5)
	}
	hit := 0.0
	if perf.Effectiveness > 0.5 {
		hit = 0.1
	}
	s.SuccessRate = s.SuccessRate*0.9 + hit
}

// AdaptationFactor returns the current multiplicative adjustment.
func (s AdaptationStats) AdaptationFactor() float64 { return s.adaptationFactor }

// Reset restores the neutral starting state.
func (s *AdaptationStats) Reset() { *s = NewAdaptationStats() }

// QuantumAmplitudeAmplifier ranks nodes by an adaptive promise score and
// boosts the amplitude of those exceeding a self-tuning threshold
//.
type QuantumAmplitudeAmplifier struct {
	cfg               AmplifierConfig
	adaptation        AdaptationStats
	performanceHistory []AmplificationPerformance
}

// NewQuantumAmplitudeAmplifier starts from the default AmplifierConfig.
func NewQuantumAmplitudeAmplifier() *QuantumAmplitudeAmplifier {
	return &QuantumAmplitudeAmplifier{cfg: DefaultAmplifierConfig(), adaptation: NewAdaptationStats()}
}

// NewQuantumAmplitudeAmplifierWithConfig starts from a caller-supplied
// AmplifierConfig.
func NewQuantumAmplitudeAmplifierWithConfig(cfg AmplifierConfig) *QuantumAmplitudeAmplifier {
	return &QuantumAmplitudeAmplifier{cfg: cfg, adaptation: NewAdaptationStats()}
}

// AmplifyPromisingNodes scores every node in targetIDs (or the whole tree
// when targetIDs is nil), amplifying those whose score clears the adaptive
// threshold.
func (a *QuantumAmplitudeAmplifier) AmplifyPromisingNodes(tree map[string]*quantum.Node, convergenceScore float64, targetIDs []string) AmplificationResult {
	start := time.Now()

	ids := targetIDs
	if ids == nil {
		ids = make([]string, 0, len(tree))
		for id := range tree {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return EmptyAmplificationResult()
	}

	type scored struct {
		id    string
		score float64
	}
	var scores []scored
	for _, id := range ids {
		if node, ok := tree[id]; ok {
			scores = append(scores, scored{id, a.amplificationScore(node, convergenceScore)})
		}
	}
	nodesProcessed := len(scores)

	threshold := a.cfg.BaseThreshold * (1.0 + convergenceScore*0.5)

	var (
		nodesAmplified   int
		totalAmplification float64
		operations       []AmplificationOperation
	)
	for _, s := range scores {
		if s.score <= threshold {
			continue
		}
		node := tree[s.id]
		factor := a.amplificationFactor(s.score, convergenceScore)
		originalAmplitude := node.AmplitudeNorm()
		node.Amplitude *= complex(factor, 0)
		newAmplitude := node.AmplitudeNorm()

		actual := newAmplitude / math.Max(originalAmplitude, 1e-10)
		totalAmplification += actual
		nodesAmplified++
		operations = append(operations, AmplificationOperation{
			NodeID: s.id, OriginalAmplitude: originalAmplitude, NewAmplitude: newAmplitude,
			AmplificationFactor: factor, Score: s.score,
		})
	}

	averageAmplification := 1.0
	if nodesAmplified > 0 {
		averageAmplification = totalAmplification / float64(nodesAmplified)
	}

	result := AmplificationResult{
		NodesProcessed:       nodesProcessed,
		NodesAmplified:       nodesAmplified,
		AverageAmplification: averageAmplification,
		TotalAmplification:   totalAmplification,
		ProcessingTime:       time.Since(start),
		Operations:           operations,
		ConvergenceScore:     convergenceScore,
		ThresholdUsed:        threshold,
	}

	a.recordPerformance(result)
	return result
}

// amplificationScore blends visit/amplitude/coherence/reward signals,
// weighting reward more heavily as convergence rises.
func (a *QuantumAmplitudeAmplifier) amplificationScore(node *quantum.Node, convergenceScore float64) float64 {
	visits := float64(node.Visits)
	visitScore := math.Sqrt(visits) / (visits + 10.0)
	amplitudeScore := math.Min(node.AmplitudeNorm(), 1.0)
	coherenceScore := 1.0 - node.State.Decoherence
	rewardScore := 0.0
	if node.Visits > 0 {
		rewardScore = cmplx.Abs(node.QuantumReward) / visits
	}

	convergenceWeight := 0.5 + convergenceScore*0.3
	baseWeight := 1.0 - convergenceWeight

	combined := (visitScore*0.25 + amplitudeScore*0.25 + coherenceScore*0.25 + rewardScore*0.25)
	return combined*baseWeight + rewardScore*convergenceWeight
}

// amplificationFactor derives the clamped multiplicative boost applied to
// a qualifying node's amplitude.
func (a *QuantumAmplitudeAmplifier) amplificationFactor(score, convergenceScore float64) float64 {
	scoreMultiplier := math.Min(score/a.cfg.BaseThreshold, a.cfg.MaxAmplification)
	convergenceBoost := 1.0 + convergenceScore*a.cfg.ConvergenceBoost
	factor := a.cfg.BaseAmplification * scoreMultiplier * convergenceBoost * a.adaptation.AdaptationFactor()
	return math.Max(1.0, math.Min(factor, a.cfg.MaxAmplification))
}

// recordPerformance folds a result into the rolling history (capped at
// 100 samples) and updates AdaptationStats.
func (a *QuantumAmplitudeAmplifier) recordPerformance(result AmplificationResult) {
	perf := AmplificationPerformance{
		AmplificationRatio: result.AmplificationRatio(),
		Effectiveness:      result.Effectiveness(),
		ProcessingTime:     result.ProcessingTime,
		ConvergenceScore:   result.ConvergenceScore,
	}
	if len(a.performanceHistory) >= 100 {
		a.performanceHistory = a.performanceHistory[1:]
	}
	a.performanceHistory = append(a.performanceHistory, perf)
	a.adaptation.Update(perf)
}

// AdaptParameters self-tunes BaseThreshold/BaseAmplification from the
// trailing 5-sample effectiveness average, clamped to [0.1,0.9]/[1.1,3.0].
func (a *QuantumAmplitudeAmplifier) AdaptParameters() {
	if len(a.performanceHistory) < 5 {
		return
	}
	recent := a.performanceHistory[len(a.performanceHistory)-5:]
	var sum float64
	for _, p := range recent {
		sum += p.Effectiveness
	}
	avgEffectiveness := sum / 5.0

	switch {
	case avgEffectiveness > 0.8:
		a.cfg.BaseThreshold *= 0.95
		a.cfg.BaseAmplification *= 1.05
	case avgEffectiveness < 0.4:
		a.cfg.BaseThreshold *= 1.05
		a.cfg.BaseAmplification *= 0.95
	}

	a.cfg.BaseThreshold = math.Max(0.1, math.Min(a.cfg.BaseThreshold, 0.9))
	a.cfg.BaseAmplification = math.Max(1.1, math.Min(a.cfg.BaseAmplification, 3.0))
}

// ResetParameters restores the default AmplifierConfig and clears history.
func (a *QuantumAmplitudeAmplifier) ResetParameters() {
	a.cfg = DefaultAmplifierConfig()
	a.adaptation.Reset()
	a.performanceHistory = nil
}

// Config returns a copy of the current AmplifierConfig.
func (a *QuantumAmplitudeAmplifier) Config() AmplifierConfig { return a.cfg }

// UpdateConfig replaces the AmplifierConfig wholesale.
func (a *QuantumAmplitudeAmplifier) UpdateConfig(cfg AmplifierConfig) { a.cfg = cfg }

// AdaptationStatsSnapshot returns the amplifier's current AdaptationStats.
func (a *QuantumAmplitudeAmplifier) AdaptationStatsSnapshot() AdaptationStats { return a.adaptation }
