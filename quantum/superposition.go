// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package quantum implements the complex-amplitude node state, superposition,
// and phase-evolution primitives consumed by the quantum MCTS engine.
// Amplitudes are Go's native complex128 rather than a hand-rolled wrapper
// type; math/cmplx supplies norm/polar arithmetic.
package quantum

import (
	"math"
	"math/cmplx"
)

// SuperpositionState holds one complex amplitude per candidate action, kept
// normalized so |amplitude|^2 sums to 1 across the action set.
type SuperpositionState struct {
	Amplitudes []complex128
}

// NewSuperposition returns an equal-weight superposition over n actions.
func NewSuperposition(n int) SuperpositionState {
	if n <= 0 {
		return SuperpositionState{}
	}
	weight := complex(1.0/math.Sqrt(float64(n)), 0)
	amps := make([]complex128, n)
	for i := range amps {
		amps[i] = weight
	}
	return SuperpositionState{Amplitudes: amps}
}

// Clone returns an independent copy.
func (s SuperpositionState) Clone() SuperpositionState {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return SuperpositionState{Amplitudes: amps}
}

// Evolve rotates every amplitude's phase by delta, leaving magnitudes (and
// so measurement probabilities) unchanged.
func (s *SuperpositionState) Evolve(delta float64) {
	rotation := cmplx.Rect(1, delta)
	for i, a := range s.Amplitudes {
		s.Amplitudes[i] = a * rotation
	}
}

// MeasurementBasis names the basis a superposition is measured in. Only
// the computational basis (measuring |amplitude|^2 directly) is modeled.
type MeasurementBasis struct{ name string }

// Computational returns the standard computational-basis measurement.
func Computational() MeasurementBasis { return MeasurementBasis{name: "computational"} }

// Measure returns the normalized probability distribution over actions,
// the quantum measurement performed in the computational basis.
func (s SuperpositionState) Measure(MeasurementBasis) []float64 {
	if len(s.Amplitudes) == 0 {
		return nil
	}
	probs := make([]float64, len(s.Amplitudes))
	var sum float64
	for i, a := range s.Amplitudes {
		p := cmplx.Abs(a) * cmplx.Abs(a)
		probs[i] = p
		sum += p
	}
	if sum == 0 {
		return probs
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// PhaseEvolution computes a per-step phase delta scaled by a configured
// rate, used to evolve a newly expanded child's superposition.
type PhaseEvolution struct {
	Rate float64
}

// Compute scales the evolution rate by dt.
func (p PhaseEvolution) Compute(dt float64) float64 {
	return p.Rate * dt
}

// ActionPhase derives a deterministic phase in [0, 2*pi) from an action
// name via a simple multiplicative string hash, so repeated expansions of
// the same action always rotate the child amplitude the same way.
func ActionPhase(action string) float64 {
	var hash uint32
	for _, c := range action {
		hash = hash*31 + uint32(c)
	}
	return float64(hash) * 2 * math.Pi / float64(^uint32(0))
}
