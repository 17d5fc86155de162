// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumconfig

// Preset names a builder starting point.
type Preset int

const (
	PresetDefault Preset = iota
	PresetPerformance
	PresetAccuracy
	PresetSystemOptimized
	PresetMinimal
)

// Builder constructs a Config through a fluent, clamping API. Every setter
// clamps its input in place, so Build never fails on range — it only
// fails if a caller bypassed the builder and hand-built an invalid Config.
// This stands in for the original's compile-time typestate (Unvalidated ->
// Validated marker types): Go has no PhantomData, so the gate is Build's
// runtime Validate call instead.
type Builder struct {
	cfg Config
}

// NewBuilder starts from the Default preset.
func NewBuilder() *Builder { return &Builder{cfg: Default()} }

// FromPreset starts from a named preset instead of Default.
func FromPreset(p Preset) *Builder {
	b := &Builder{}
	switch p {
	case PresetPerformance:
		b.cfg = Performance()
	case PresetAccuracy:
		b.cfg = Accuracy()
	case PresetSystemOptimized:
		b.cfg = SystemOptimized()
	case PresetMinimal:
		b.cfg = Minimal()
	default:
		b.cfg = Default()
	}
	return b
}

// Parallelism is the sub-builder for the concurrency-related fields.
type Parallelism struct{ b *Builder }

// Parallelism enters the parallelism sub-builder.
func (b *Builder) Parallelism() Parallelism { return Parallelism{b} }

// MaxQuantumParallel clamps to [1,128].
func (p Parallelism) MaxQuantumParallel(v int) Parallelism {
	p.b.cfg.MaxQuantumParallel = clampInt(v, 1, 128)
	return p
}

// Done returns to the parent Builder.
func (p Parallelism) Done() *Builder { return p.b }

// Thresholds is the sub-builder for the decoherence/amplitude/phase/
// measurement-precision fields.
type Thresholds struct{ b *Builder }

// Thresholds enters the thresholds sub-builder.
func (b *Builder) Thresholds() Thresholds { return Thresholds{b} }

func (t Thresholds) DecoherenceThreshold(v float64) Thresholds {
	t.b.cfg.DecoherenceThreshold = clampFloat(v, 0.001, 1)
	return t
}

func (t Thresholds) AmplitudeThreshold(v float64) Thresholds {
	t.b.cfg.AmplitudeThreshold = clampFloat(v, 1e-4, 1)
	return t
}

func (t Thresholds) PhaseEvolutionRate(v float64) Thresholds {
	t.b.cfg.PhaseEvolutionRate = clampFloat(v, 1e-3, 1)
	return t
}

func (t Thresholds) MeasurementPrecision(v float64) Thresholds {
	t.b.cfg.MeasurementPrecision = clampFloat(v, 1e-15, 1)
	return t
}

func (t Thresholds) Done() *Builder { return t.b }

// Performance is the sub-builder for throughput-oriented fields.
type Performance struct{ b *Builder }

func (b *Builder) Performance() Performance { return Performance{b} }

func (p Performance) QuantumExploration(v float64) Performance {
	p.b.cfg.QuantumExploration = clampFloat(v, 0.1, 10)
	return p
}

func (p Performance) SimulationTimeoutMs(v int64) Performance {
	p.b.cfg.SimulationTimeoutMs = int64(clampFloat(float64(v), 100, 3.6e6))
	return p
}

func (p Performance) MaxTreeSize(v int) Performance {
	p.b.cfg.MaxTreeSize = int(clampFloat(float64(v), 10, 1e7))
	return p
}

func (p Performance) Done() *Builder { return p.b }

// Accuracy is the sub-builder for search-quality fields.
type Accuracy struct{ b *Builder }

func (b *Builder) Accuracy() Accuracy { return Accuracy{b} }

func (a Accuracy) RecursiveIterations(v int) Accuracy {
	a.b.cfg.RecursiveIterations = int(clampFloat(float64(v), 1, 20))
	return a
}

func (a Accuracy) EntanglementStrength(v float64) Accuracy {
	a.b.cfg.EntanglementStrength = clampFloat(v, 0, 1)
	return a
}

func (a Accuracy) Done() *Builder { return a.b }

// Build validates and returns the assembled Config.
func (b *Builder) Build() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}

// ForRealTime favors low latency over search depth: small parallelism,
// short timeouts, small tree cap.
func ForRealTime() (Config, error) {
	return NewBuilder().
		Parallelism().MaxQuantumParallel(4).Done().
		Performance().SimulationTimeoutMs(500).MaxTreeSize(2000).Done().
		Accuracy().RecursiveIterations(2).Done().
		Build()
}

// ForBatchProcessing favors thoroughness: wide parallelism, long timeouts,
// large tree cap, many recursive rounds.
func ForBatchProcessing() (Config, error) {
	return NewBuilder().
		Parallelism().MaxQuantumParallel(64).Done().
		Performance().SimulationTimeoutMs(600000).MaxTreeSize(5_000_000).Done().
		Accuracy().RecursiveIterations(20).Done().
		Build()
}

// ForMobile favors memory economy over everything else.
func ForMobile() (Config, error) {
	return NewBuilder().
		Parallelism().MaxQuantumParallel(2).Done().
		Performance().MaxTreeSize(500).SimulationTimeoutMs(2000).Done().
		Accuracy().RecursiveIterations(3).Done().
		Build()
}

// ForHPC favors maximum parallelism and search depth on a large host.
func ForHPC() (Config, error) {
	return FromPreset(PresetSystemOptimized).
		Performance().MaxTreeSize(10_000_000).SimulationTimeoutMs(3600000).Done().
		Accuracy().RecursiveIterations(20).Done().
		Build()
}
