// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// EvaluationRubric is the structured evaluation criteria derived from an
// OptimizationSpec. Required keys alignment/quality/safety must be present
// in ScoringGuidelines; Objective must be non-empty.
type EvaluationRubric struct {
	Objective         string
	SuccessCriteria   []string
	Constraints       []string
	ScoringGuidelines map[string]float64
}

// Validate checks the required-key invariants.
func (r EvaluationRubric) Validate() error {
	if r.Objective == "" {
		return ErrEmptyObjective
	}
	for _, key := range []string{"alignment", "quality", "safety"} {
		if _, ok := r.ScoringGuidelines[key]; !ok {
			return ErrMissingRequiredGuideline
		}
	}
	return nil
}

// AgentEvaluation is a single agent's raw assessment of a candidate action,
// scored against a rubric in one committee phase.
type AgentEvaluation struct {
	Agent                 string
	MakesProgress          bool
	Confidence             float64
	Alignment              float64
	Quality                float64
	Safety                 float64
	Performance            float64
	ImprovementSuggestions []string
	DissentingOpinion      string
}

// ScoringWeights weights the four rubric dimensions into an overall score.
// Defaults (0.4, 0.3, 0.2, 0.1) are normalized to sum to 1 by Normalize.
type ScoringWeights struct {
	Alignment   float64
	Quality     float64
	Safety      float64
	Performance float64
}

// DefaultScoringWeights returns the spec's default weighting.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Alignment: 0.4, Quality: 0.3, Safety: 0.2, Performance: 0.1}
}

// Normalize rescales the weights to sum to 1, guarding against a
// degenerate all-zero input by falling back to the defaults.
func (w ScoringWeights) Normalize() ScoringWeights {
	sum := w.Alignment + w.Quality + w.Safety + w.Performance
	if sum <= 0 {
		return DefaultScoringWeights()
	}
	return ScoringWeights{
		Alignment:   w.Alignment / sum,
		Quality:     w.Quality / sum,
		Safety:      w.Safety / sum,
		Performance: w.Performance / sum,
	}
}

// ConsensusDecision is the committee's aggregated verdict on one action.
type ConsensusDecision struct {
	MakesProgress          bool
	Confidence             float64
	OverallScore           float64
	ImprovementSuggestions []string
	DissentingOpinions     []string
	IsError                bool
	FromCache              bool
	Rounds                 int
	TotalTimeMs            int64
}

// OverallScoreOf computes the weighted, clamped overall score for one
// evaluation.
func OverallScoreOf(e AgentEvaluation, w ScoringWeights) float64 {
	w = w.Normalize()
	score := w.Alignment*e.Alignment + w.Quality*e.Quality + w.Safety*e.Safety + w.Performance*e.Performance
	return clamp01(score)
}

// AggregateEvaluations merges a round of AgentEvaluations into one
// ConsensusDecision: a weighted average on numerics, logical AND on
// MakesProgress, and deduplicated suggestion/dissent sets.
func AggregateEvaluations(evals []AgentEvaluation, w ScoringWeights) ConsensusDecision {
	if len(evals) == 0 {
		return ConsensusDecision{}
	}
	var (
		confSum, scoreSum float64
		progress          = true
		suggestions       = dedupSet{}
		dissent           = dedupSet{}
	)
	for _, e := range evals {
		confSum += e.Confidence
		scoreSum += OverallScoreOf(e, w)
		progress = progress && e.MakesProgress
		for _, s := range e.ImprovementSuggestions {
			suggestions.add(s)
		}
		if e.DissentingOpinion != "" {
			dissent.add(e.DissentingOpinion)
		}
	}
	n := float64(len(evals))
	return ConsensusDecision{
		MakesProgress:          progress,
		Confidence:             clamp01(confSum / n),
		OverallScore:           clamp01(scoreSum / n),
		ImprovementSuggestions: suggestions.values(),
		DissentingOpinions:     dissent.values(),
	}
}

// MergeDecisions folds two already-aggregated decisions using the same
// policy as AggregateEvaluations (weighted average on numerics, AND on
// MakesProgress), used when combining steering context across rounds.
func MergeDecisions(a, b ConsensusDecision) ConsensusDecision {
	suggestions := dedupSet{}
	dissent := dedupSet{}
	for _, s := range a.ImprovementSuggestions {
		suggestions.add(s)
	}
	for _, s := range b.ImprovementSuggestions {
		suggestions.add(s)
	}
	for _, s := range a.DissentingOpinions {
		dissent.add(s)
	}
	for _, s := range b.DissentingOpinions {
		dissent.add(s)
	}
	return ConsensusDecision{
		MakesProgress:          a.MakesProgress && b.MakesProgress,
		Confidence:             clamp01((a.Confidence + b.Confidence) / 2),
		OverallScore:           clamp01((a.OverallScore + b.OverallScore) / 2),
		ImprovementSuggestions: suggestions.values(),
		DissentingOpinions:     dissent.values(),
	}
}

type dedupSet map[string]struct{}

func (d dedupSet) add(v string) { d[v] = struct{}{} }

func (d dedupSet) values() []string {
	if len(d) == 0 {
		return nil
	}
	out := make([]string, 0, len(d))
	for v := range d {
		out = append(out, v)
	}
	return out
}
