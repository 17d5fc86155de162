// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package benchmark

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PerformanceGrade is a letter grade derived from a combined speed/success
// score, mirroring the grading scheme used across the selection and
// pruning result types.
type PerformanceGrade byte

const (
	GradeA PerformanceGrade = 'A'
	GradeB PerformanceGrade = 'B'
	GradeC PerformanceGrade = 'C'
	GradeD PerformanceGrade = 'D'
	GradeF PerformanceGrade = 'F'
)

func gradeFrom(score float64) PerformanceGrade {
	switch {
	case score >= 0.9:
		return GradeA
	case score >= 0.8:
		return GradeB
	case score >= 0.7:
		return GradeC
	case score >= 0.6:
		return GradeD
	default:
		return GradeF
	}
}

// Snapshot is a point-in-time read of a RollingWindow's statistics.
type Snapshot struct {
	Samples     int
	Average     time.Duration
	P50         time.Duration
	P90         time.Duration
	P95         time.Duration
	P99         time.Duration
	Throughput  float64 // ops/sec, derived from Average
	Successes   uint64
	Failures    uint64
	CacheHits   uint64
	CacheMisses uint64
	Grade       PerformanceGrade

	// CoefficientOfVariation is stddev/mean over the window, used by
	// comparison analysis to detect consistency regressions.
	CoefficientOfVariation float64
}

// RollingWindow is the shared rolling-duration/percentile primitive the
// Committee and the engine Controller embed instead of reimplementing
// their own counters. It pairs an
// in-process ring buffer — for exact percentile math over a small window —
// with a Prometheus histogram for external scraping.
type RollingWindow struct {
	mu       sync.Mutex
	capacity int
	samples  []time.Duration

	successes, failures, cacheHits, cacheMisses uint64

	histogram prometheus.Histogram
}

// NewRollingWindow creates a window retaining at most capacity samples
// (spec default: 32; valid range [32,100]). reg may be nil to skip
// Prometheus registration.
func NewRollingWindow(capacity int, reg prometheus.Registerer) *RollingWindow {
	if capacity <= 0 {
		capacity = 32
	}
	w := &RollingWindow{capacity: capacity}
	if reg != nil {
		w.histogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cognitive_core_operation_duration_seconds",
			Help:    "Duration of a subsystem operation.",
			Buckets: prometheus.DefBuckets,
		})
		_ = reg.Register(w.histogram)
	}
	return w
}

// Observe records one completed operation's duration.
func (w *RollingWindow) Observe(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, d)
	if len(w.samples) > w.capacity {
		w.samples = w.samples[len(w.samples)-w.capacity:]
	}
	if w.histogram != nil {
		w.histogram.Observe(d.Seconds())
	}
}

// RecordSuccess increments the success counter.
func (w *RollingWindow) RecordSuccess() {
	w.mu.Lock()
	w.successes++
	w.mu.Unlock()
}

// RecordFailure increments the failure counter.
func (w *RollingWindow) RecordFailure() {
	w.mu.Lock()
	w.failures++
	w.mu.Unlock()
}

// RecordCacheHit increments the cache-hit counter.
func (w *RollingWindow) RecordCacheHit() {
	w.mu.Lock()
	w.cacheHits++
	w.mu.Unlock()
}

// RecordCacheMiss increments the cache-miss counter.
func (w *RollingWindow) RecordCacheMiss() {
	w.mu.Lock()
	w.cacheMisses++
	w.mu.Unlock()
}

// Snapshot computes percentiles and throughput over the current window.
func (w *RollingWindow) Snapshot() Snapshot {
	w.mu.Lock()
	samples := make([]time.Duration, len(w.samples))
	copy(samples, w.samples)
	succ, fail, hits, misses := w.successes, w.failures, w.cacheHits, w.cacheMisses
	w.mu.Unlock()

	if len(samples) == 0 {
		return Snapshot{Successes: succ, Failures: fail, CacheHits: hits, CacheMisses: misses, Grade: GradeF}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	avg := sum / time.Duration(len(samples))

	var variance float64
	if len(samples) > 1 {
		meanNs := float64(avg)
		for _, s := range samples {
			d := float64(s) - meanNs
			variance += d * d
		}
		variance /= float64(len(samples))
	}
	cv := 0.0
	if avg > 0 {
		cv = math.Sqrt(variance) / float64(avg)
	}

	throughput := 0.0
	if avg > 0 {
		throughput = float64(time.Second) / float64(avg)
	}

	total := succ + fail
	successRate := 1.0
	if total > 0 {
		successRate = float64(succ) / float64(total)
	}
	speedScore := 1.0
	if avg > 0 {
		// Normalize: operations at or under 100ms are "fast" (score 1);
		// the score falls linearly to 0 at 1s and stays 0 beyond.
		speedScore = clamp01(1.0 - float64(avg-100*time.Millisecond)/float64(900*time.Millisecond))
	}
	combined := (speedScore + successRate) / 2.0

	return Snapshot{
		Samples:     len(samples),
		Average:     avg,
		P50:         percentile(samples, 0.50),
		P90:         percentile(samples, 0.90),
		P95:         percentile(samples, 0.95),
		P99:         percentile(samples, 0.99),
		Throughput:  throughput,
		Successes:   succ,
		Failures:    fail,
		CacheHits:   hits,
		CacheMisses: misses,
		Grade:       gradeFrom(combined),
		CoefficientOfVariation: cv,
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
