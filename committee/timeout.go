// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"context"
	"sync"
	"time"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// TimeoutStrategy selects how a deadline is computed/retried for one
// evaluation call.
type TimeoutStrategy int

const (
	// TimeoutFixed wraps the call in a single deadline; no retry.
	TimeoutFixed TimeoutStrategy = iota
	// TimeoutProgressive retries with timeout_{k+1} = timeout_k * multiplier
	// up to MaxRetries, emitting a fallback decision on exhaustion.
	TimeoutProgressive
	// TimeoutAdaptive computes timeout = base * (1 + 2*complexityFactor).
	TimeoutAdaptive
)

// TimeoutScenario buckets an action by expected evaluation cost, used to
// look up a TimeoutRecommendation without re-deriving constants per call.
type TimeoutScenario int

const (
	ScenarioSimple TimeoutScenario = iota
	ScenarioModerate
	ScenarioComplex
	ScenarioCritical
)

// TimeoutRecommendation pre-computes a suggested base timeout and retry
// budget for a TimeoutScenario.
type TimeoutRecommendation struct {
	BaseTimeout time.Duration
	MaxRetries  int
	Strategy    TimeoutStrategy
}

// TimeoutRecommendations is the scenario -> recommendation lookup table
//.
var TimeoutRecommendations = map[TimeoutScenario]TimeoutRecommendation{
	ScenarioSimple:   {BaseTimeout: 2 * time.Second, MaxRetries: 1, Strategy: TimeoutFixed},
	ScenarioModerate: {BaseTimeout: 5 * time.Second, MaxRetries: 2, Strategy: TimeoutProgressive},
	ScenarioComplex:  {BaseTimeout: 10 * time.Second, MaxRetries: 3, Strategy: TimeoutProgressive},
	ScenarioCritical: {BaseTimeout: 15 * time.Second, MaxRetries: 2, Strategy: TimeoutAdaptive},
}

// TimeoutContext carries a rolling average of recent call durations, used
// by TimeoutAdaptive to keep its complexity factor grounded in observed
// behavior rather than a static guess.
type TimeoutContext struct {
	mu            sync.Mutex
	recentMs      []float64
	maxSamples    int
}

// NewTimeoutContext creates a context retaining the last maxSamples
// observations (spec rolling-window convention: small, fixed size).
func NewTimeoutContext(maxSamples int) *TimeoutContext {
	if maxSamples <= 0 {
		maxSamples = 16
	}
	return &TimeoutContext{maxSamples: maxSamples}
}

// Record appends one observed call duration.
func (c *TimeoutContext) Record(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recentMs = append(c.recentMs, float64(d.Milliseconds()))
	if len(c.recentMs) > c.maxSamples {
		c.recentMs = c.recentMs[len(c.recentMs)-c.maxSamples:]
	}
}

// ComplexityFactor returns the rolling average call duration as a fraction
// of 1 second, clamped to [0,1].
func (c *TimeoutContext) ComplexityFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.recentMs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range c.recentMs {
		sum += v
	}
	avg := sum / float64(len(c.recentMs))
	factor := avg / 1000.0
	if factor > 1 {
		factor = 1
	}
	if factor < 0 {
		factor = 0
	}
	return factor
}

// TimeoutHandler wraps a single evaluator call in the configured
// TimeoutStrategy; an expired deadline yields a conservative fallback
// AgentEvaluation returned together with ErrTimeout
//.
type TimeoutHandler struct {
	Strategy   TimeoutStrategy
	Base       time.Duration
	Multiplier float64
	MaxRetries int
	Ctx        *TimeoutContext
}

// NewTimeoutHandler builds a handler for the given strategy with sane
// defaults (multiplier 1.5, matching the original's progressive backoff).
func NewTimeoutHandler(strategy TimeoutStrategy, base time.Duration, maxRetries int) *TimeoutHandler {
	return &TimeoutHandler{
		Strategy:   strategy,
		Base:       base,
		Multiplier: 1.5,
		MaxRetries: maxRetries,
		Ctx:        NewTimeoutContext(16),
	}
}

// call is the signature of the operation being deadline-wrapped.
type call func(ctx context.Context) (kernel.AgentEvaluation, error)

// Run executes fn under this handler's strategy. On exhaustion it returns a
// fallback AgentEvaluation together with the last error (ErrTimeout for an
// expired deadline), so the caller can use the fallback and still count
// the failure.
func (h *TimeoutHandler) Run(ctx context.Context, fn call) (kernel.AgentEvaluation, error) {
	switch h.Strategy {
	case TimeoutProgressive:
		return h.runProgressive(ctx, fn)
	case TimeoutAdaptive:
		return h.runOnce(ctx, fn, h.adaptiveTimeout())
	default:
		return h.runOnce(ctx, fn, h.Base)
	}
}

func (h *TimeoutHandler) adaptiveTimeout() time.Duration {
	factor := 0.0
	if h.Ctx != nil {
		factor = h.Ctx.ComplexityFactor()
	}
	scaled := float64(h.Base) * (1 + 2*factor)
	return time.Duration(scaled)
}

func (h *TimeoutHandler) runProgressive(ctx context.Context, fn call) (kernel.AgentEvaluation, error) {
	timeout := h.Base
	var lastErr error
	for attempt := 0; attempt <= h.MaxRetries; attempt++ {
		eval, err := h.runOnce(ctx, fn, timeout)
		if err == nil {
			return eval, nil
		}
		lastErr = err
		timeout = time.Duration(float64(timeout) * h.Multiplier)
	}
	return FallbackEvaluation(lastErr), lastErr
}

func (h *TimeoutHandler) runOnce(ctx context.Context, fn call, timeout time.Duration) (kernel.AgentEvaluation, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		eval kernel.AgentEvaluation
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		eval, err := fn(callCtx)
		resCh <- result{eval, err}
	}()

	select {
	case r := <-resCh:
		if h.Ctx != nil {
			h.Ctx.Record(time.Since(start))
		}
		return r.eval, r.err
	case <-callCtx.Done():
		return FallbackEvaluation(ErrTimeout), ErrTimeout
	}
}

// FallbackEvaluation is the conservative decision returned on timeout
//.
func FallbackEvaluation(cause error) kernel.AgentEvaluation {
	msg := "Timeout: evaluation did not complete within deadline"
	if cause != nil && cause != ErrTimeout {
		msg = "Timeout: " + cause.Error()
	}
	return kernel.AgentEvaluation{
		MakesProgress:          false,
		Confidence:             0,
		Alignment:              0,
		Quality:                0,
		Safety:                 0,
		Performance:            0,
		ImprovementSuggestions: nil,
		DissentingOpinion:      msg,
	}
}

// CircuitState enumerates the breaker's Closed/Open/HalfOpen machine.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker gates repeated evaluator failures: after FailureThreshold
// consecutive failures it opens (rejecting calls immediately); after
// ProbeInterval it half-opens and admits calls again; SuccessThreshold
// consecutive successes close it again.
type CircuitBreaker struct {
	mu sync.Mutex

	FailureThreshold int
	SuccessThreshold int
	ProbeInterval    time.Duration

	state           CircuitState
	consecFailures  int
	consecSuccesses int
	openedAt        time.Time
	clock           kernel.Clock
}

// NewCircuitBreaker constructs a closed breaker.
func NewCircuitBreaker(failureThreshold, successThreshold int, probeInterval time.Duration, clock kernel.Clock) *CircuitBreaker {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &CircuitBreaker{
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		ProbeInterval:    probeInterval,
		clock:            clock,
	}
}

// Allow reports whether a call should be attempted, transitioning
// Open -> HalfOpen once the probe interval has elapsed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if b.clock.Now().Sub(b.openedAt) >= b.ProbeInterval {
			b.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess reports a successful call outcome.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecFailures = 0
	switch b.state {
	case CircuitHalfOpen:
		b.consecSuccesses++
		if b.consecSuccesses >= b.SuccessThreshold {
			b.state = CircuitClosed
			b.consecSuccesses = 0
		}
	case CircuitClosed:
		// no-op
	}
}

// RecordFailure reports a failed call outcome, opening the breaker once
// FailureThreshold consecutive failures accrue.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecSuccesses = 0
	b.consecFailures++
	if b.state == CircuitHalfOpen || b.consecFailures >= b.FailureThreshold {
		b.state = CircuitOpen
		b.openedAt = b.clock.Now()
	}
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
