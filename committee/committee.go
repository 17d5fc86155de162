// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweetmcp/cognitive-core/benchmark"
	"github.com/sweetmcp/cognitive-core/kernel"
)

// Phase names the three rounds of the consensus algorithm, in order.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseReview  Phase = "review"
	PhaseRefine  Phase = "refine"
)

var phaseOrder = []Phase{PhaseInitial, PhaseReview, PhaseRefine}

// Config bundles the tunables a Committee needs beyond its collaborators.
type Config struct {
	MaxConcurrent      int
	ConsensusThreshold float64
	ScoringWeights     kernel.ScoringWeights
	CacheCapacity      int
	TimeoutStrategy    TimeoutStrategy
	TimeoutBase        time.Duration
	TimeoutMaxRetries  int
	CircuitFailures    int
	CircuitSuccesses   int
	CircuitProbe       time.Duration
}

// DefaultConfig returns the standard tuning: weights (0.4,0.3,0.2,0.1),
// threshold 0.7, cache capacity 1000.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:      4,
		ConsensusThreshold: 0.7,
		ScoringWeights:     kernel.DefaultScoringWeights(),
		CacheCapacity:      1000,
		TimeoutStrategy:    TimeoutProgressive,
		TimeoutBase:        5 * time.Second,
		TimeoutMaxRetries:  2,
		CircuitFailures:    5,
		CircuitSuccesses:   2,
		CircuitProbe:       30 * time.Second,
	}
}

// PerformanceStats aggregates counters the benchmarking layer reads off a
// running Committee.
type PerformanceStats struct {
	TotalEvaluations     uint64
	ConsensusReachedCount uint64
	EarlyConsensusCount  uint64
}

// Committee is the multi-phase consensus evaluator. It
// owns a fingerprint cache, a bounded pool of agent evaluators, a circuit
// breaker, and a rolling-duration window shared with the benchmarking
// layer (C9).
type Committee struct {
	agents    []kernel.LlmEvaluator
	cfg       Config
	cache     *kernel.Cache
	bus       *kernel.EventBus
	clock     kernel.Clock
	breaker   *CircuitBreaker
	window    *benchmark.RollingWindow
	telemetry kernel.Telemetry

	mu    sync.Mutex
	stats PerformanceStats
}

// SetTelemetry attaches an external telemetry sink that receives every
// CommitteeEvent alongside (not instead of) the in-process EventBus. A nil
// telemetry is equivalent to kernel.NoopTelemetry.
func (c *Committee) SetTelemetry(t kernel.Telemetry) { c.telemetry = t }

// New constructs a Committee. agents is the pool of independent evaluators
// consulted each round; bus may be nil (events are then dropped).
func New(agents []kernel.LlmEvaluator, cfg Config, bus *kernel.EventBus, clock kernel.Clock) *Committee {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &Committee{
		agents:    agents,
		cfg:       cfg,
		cache:     kernel.NewCache(cfg.CacheCapacity, nil),
		bus:       bus,
		clock:     clock,
		breaker:   NewCircuitBreaker(cfg.CircuitFailures, cfg.CircuitSuccesses, cfg.CircuitProbe, clock),
		window:    benchmark.NewRollingWindow(32, nil),
		telemetry: kernel.NoopTelemetry{},
	}
}

// EvaluateAction runs the Initial->Review->Refine consensus algorithm for
// one candidate action, returning the aggregated ConsensusDecision.
func (c *Committee) EvaluateAction(ctx context.Context, state kernel.CodeState, action string, spec kernel.OptimizationSpec, objective string) (kernel.ConsensusDecision, error) {
	start := c.clock.Now()

	rubric := BuildRubric(spec, objective)
	if err := rubric.Validate(); err != nil {
		return kernel.ConsensusDecision{IsError: true}, err
	}

	fp := kernel.FingerprintHex(action, objective)
	if entry, ok := c.cache.Get(fp); ok {
		decision := entry.Value.(kernel.ConsensusDecision)
		decision.FromCache = true
		c.publish(ctx, kernel.CommitteeEvent{Kind: kernel.EventFinalDecision, Action: action, Decision: decision, FromCache: true})
		return decision, nil
	}

	if !c.breaker.Allow() {
		return kernel.ConsensusDecision{IsError: true, DissentingOpinions: []string{"circuit breaker open, retry later"}}, ErrCircuitOpen
	}

	var (
		rounds    []kernel.ConsensusDecision
		history   [][]kernel.AgentEvaluation
		finalDec  kernel.ConsensusDecision
		haveFinal bool
		early     bool
	)

	for _, phase := range phaseOrder {
		var prior []kernel.AgentEvaluation
		if len(history) > 0 {
			prior = history[len(history)-1]
		}

		c.publish(ctx, kernel.CommitteeEvent{Kind: kernel.EventEvaluationStarted, Action: action, Phase: string(phase), AgentCount: len(c.agents)})

		var hint kernel.SteeringHint
		if phase == PhaseRefine {
			hint = steeringHint(history)
		}

		evals, failed, err := c.runRound(ctx, state, action, rubric, phase, prior, hint)
		if err != nil {
			c.breaker.RecordFailure()
			return kernel.ConsensusDecision{IsError: true}, err
		}
		if failed == len(c.agents) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		history = append(history, evals)

		decision := kernel.AggregateEvaluations(evals, c.cfg.ScoringWeights)
		rounds = append(rounds, decision)

		shouldContinue := phase != PhaseRefine
		c.publish(ctx, kernel.CommitteeEvent{Kind: kernel.EventPhaseCompleted, Action: action, Phase: string(phase), ConsensusReached: decision.OverallScore >= c.cfg.ConsensusThreshold, NextPhase: nextPhase(phase, shouldContinue)})

		if decision.OverallScore >= c.cfg.ConsensusThreshold {
			finalDec = decision
			finalDec.Rounds = len(rounds)
			haveFinal = true
			early = true
			c.publish(ctx, kernel.CommitteeEvent{Kind: kernel.EventEarlyConsensus, Action: action, Phase: string(phase), Decision: decision, ThresholdExceededBy: decision.OverallScore - c.cfg.ConsensusThreshold})
			break
		}

		if phase == PhaseReview && !steeringHint(history).ShouldContinue {
			finalDec = bestOf(rounds)
			haveFinal = true
			break
		}
	}

	if !haveFinal {
		finalDec = bestOf(rounds)
	}

	finalDec.TotalTimeMs = time.Since(start).Milliseconds()
	finalDec.Rounds = len(rounds)

	c.cache.Put(fp, finalDec, finalDec.OverallScore, c.clock.Now())
	c.window.Observe(time.Since(start))

	c.mu.Lock()
	c.stats.TotalEvaluations++
	if finalDec.OverallScore >= c.cfg.ConsensusThreshold {
		c.stats.ConsensusReachedCount++
	}
	if early {
		c.stats.EarlyConsensusCount++
	}
	c.mu.Unlock()

	c.publish(ctx, kernel.CommitteeEvent{Kind: kernel.EventFinalDecision, Action: action, Decision: finalDec, Rounds: finalDec.Rounds, TotalTimeMs: finalDec.TotalTimeMs})

	return finalDec, nil
}

// runRound consults every agent for one phase, bounded by MaxConcurrent. A
// per-agent timeout never fails the round (it folds into a fallback
// evaluation); the count of agents that fell back is reported so the
// circuit breaker can react to a round where every agent failed.
func (c *Committee) runRound(ctx context.Context, state kernel.CodeState, action string, rubric kernel.EvaluationRubric, phase Phase, prior []kernel.AgentEvaluation, hint kernel.SteeringHint) ([]kernel.AgentEvaluation, int, error) {
	if len(c.agents) == 0 {
		return nil, 0, fmt.Errorf("committee: no agents configured")
	}

	evals := make([]kernel.AgentEvaluation, len(c.agents))
	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(1, c.cfg.MaxConcurrent))

	handler := NewTimeoutHandler(c.cfg.TimeoutStrategy, c.cfg.TimeoutBase, c.cfg.TimeoutMaxRetries)

	for i, agent := range c.agents {
		i, agent := i, agent
		g.Go(func() error {
			eval, err := handler.Run(gctx, func(ctx context.Context) (kernel.AgentEvaluation, error) {
				return agent.Evaluate(ctx, state, action, rubric, string(phase), prior, hint)
			})
			evals[i] = eval
			if err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return evals, int(failed.Load()), nil
}

func (c *Committee) publish(ctx context.Context, evt kernel.CommitteeEvent) {
	if c.bus != nil {
		_ = c.bus.Publish(evt)
	}
	if c.telemetry != nil {
		_ = c.telemetry.Publish(ctx, evt)
	}
}

// AgentCount reports how many evaluators the committee was constructed
// with.
func (c *Committee) AgentCount() int { return len(c.agents) }

// Stats returns a snapshot of the committee's performance counters.
func (c *Committee) Stats() PerformanceStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CacheStats exposes the underlying fingerprint cache's statistics.
func (c *Committee) CacheStats() kernel.CacheStats {
	return c.cache.Stats()
}

func nextPhase(current Phase, shouldContinue bool) string {
	if !shouldContinue {
		return ""
	}
	switch current {
	case PhaseInitial:
		return string(PhaseReview)
	case PhaseReview:
		return string(PhaseRefine)
	default:
		return ""
	}
}

// steeringHint synthesizes a steering hint from every prior round: Refine
// is worth running only when some prior round left dissent or had an agent
// find the action made no progress. Message explains that verdict to the
// agents fed into Refine.
func steeringHint(history [][]kernel.AgentEvaluation) kernel.SteeringHint {
	if len(history) == 0 {
		return kernel.SteeringHint{Message: "no prior rounds", ShouldContinue: false}
	}
	var dissenting []string
	noProgress := false
	for _, round := range history {
		for _, e := range round {
			if e.DissentingOpinion != "" {
				dissenting = append(dissenting, e.DissentingOpinion)
			}
			if !e.MakesProgress {
				noProgress = true
			}
		}
	}
	switch {
	case len(dissenting) > 0:
		return kernel.SteeringHint{
			Message:        fmt.Sprintf("prior rounds left %d dissenting opinion(s); refine to address them", len(dissenting)),
			ShouldContinue: true,
		}
	case noProgress:
		return kernel.SteeringHint{
			Message:        "a prior round found the action makes no progress; refine to fix that",
			ShouldContinue: true,
		}
	default:
		return kernel.SteeringHint{Message: "prior rounds reached agreement; refine to polish", ShouldContinue: false}
	}
}

// bestOf picks the round with the highest OverallScore, earliest round
// winning ties.
func bestOf(rounds []kernel.ConsensusDecision) kernel.ConsensusDecision {
	if len(rounds) == 0 {
		return kernel.ConsensusDecision{IsError: true}
	}
	best := rounds[0]
	for _, r := range rounds[1:] {
		if r.OverallScore > best.OverallScore {
			best = r
		}
	}
	return best
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
