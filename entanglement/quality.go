// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entanglement

import "math"

// Quality is the result of bucketing a graph's edge strengths into
// strong/medium/weak tiers and scoring the overall distribution.
type Quality struct {
	StrengthMean  float64
	StrengthStd   float64
	StrengthMin   float64
	StrengthMax   float64
	StrongCount   int
	MediumCount   int
	WeakCount     int
	OverallQuality float64
	QualityTrend   float64
}

// StrongThreshold and MediumThreshold are the strength cutoffs separating
// strong, medium, and weak entanglement links.
const (
	StrongThreshold = 0.7
	MediumThreshold = 0.4
)

// IsAcceptable reports whether the network's entanglement quality is fit
// for quantum operations.
func (q Quality) IsAcceptable() bool {
	return q.OverallQuality >= 0.5 && q.StrengthMean >= 0.4
}

// IsExcellent reports a strongly-dominated, high-quality network.
func (q Quality) IsExcellent() bool {
	return q.OverallQuality >= 0.8 && q.StrongCount > q.WeakCount
}

// Recommendations lists concrete quality fixes.
func (q Quality) Recommendations() []string {
	var recs []string
	if q.WeakCount > q.StrongCount+q.MediumCount {
		recs = append(recs, "too many weak entanglements - consider strengthening or pruning")
	}
	if q.StrengthStd > 0.3 {
		recs = append(recs, "high strength variance - normalize entanglement strengths")
	}
	if q.StrengthMean < 0.3 {
		recs = append(recs, "low average strength - focus on creating stronger entanglements")
	}
	if q.QualityTrend < -0.05 {
		recs = append(recs, "quality is declining - investigate degradation causes")
	}
	if len(recs) == 0 {
		recs = append(recs, "entanglement quality appears satisfactory")
	}
	return recs
}

// StabilityScore blends low variance, a positive trend, and a favorable
// strong/weak balance into one figure.
func (q Quality) StabilityScore() float64 {
	stabilityFactor := 1.0 - minFloat(q.StrengthStd, 1.0)
	trendFactor := (q.QualityTrend + 1.0) / 2.0

	total := q.StrongCount + q.MediumCount + q.WeakCount
	balanceFactor := 0.0
	if total > 0 {
		balanceFactor = 1.0 - float64(q.WeakCount)/float64(total)
	}

	return clamp01(stabilityFactor*0.5 + trendFactor*0.3 + balanceFactor*0.2)
}

// QualityAnalyzer computes Quality snapshots from raw edge strengths.
type QualityAnalyzer struct{}

// Analyze buckets strengths and scores the resulting distribution.
func (QualityAnalyzer) Analyze(strengths []float64) Quality {
	if len(strengths) == 0 {
		return Quality{}
	}

	var sum float64
	min, max := math.Inf(1), math.Inf(-1)
	for _, s := range strengths {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	mean := sum / float64(len(strengths))

	var variance float64
	for _, s := range strengths {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(strengths))
	stdDev := math.Sqrt(variance)

	var strong, medium, weak int
	for _, s := range strengths {
		switch {
		case s >= StrongThreshold:
			strong++
		case s >= MediumThreshold:
			medium++
		default:
			weak++
		}
	}

	const strongWeight, mediumWeight, weakWeight = 1.0, 0.6, 0.2
	weightedSum := float64(strong)*strongWeight + float64(medium)*mediumWeight + float64(weak)*weakWeight
	maxPossible := float64(len(strengths)) * strongWeight
	overallQuality := 0.0
	if maxPossible > 0 {
		overallQuality = weightedSum / maxPossible
	}

	trend := 0.0
	switch {
	case mean > 0.6:
		trend = 0.1
	case mean < 0.3:
		trend = -0.1
	}

	return Quality{
		StrengthMean:   mean,
		StrengthStd:    stdDev,
		StrengthMin:    min,
		StrengthMax:    max,
		StrongCount:    strong,
		MediumCount:    medium,
		WeakCount:      weak,
		OverallQuality: overallQuality,
		QualityTrend:   trend,
	}
}
