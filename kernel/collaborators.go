// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"context"
)

// SteeringHint carries the Review round's verdict on whether Refine is
// worth running into the Refine round itself: Message is a short
// human-readable rationale, ShouldContinue is the same flag the committee
// used to decide whether to enter Refine at all. A zero-value SteeringHint
// is passed for the Initial and Review phases, where no steering has been
// computed yet.
type SteeringHint struct {
	Message        string
	ShouldContinue bool
}

// LlmEvaluator scores one candidate action against a rubric during one
// committee phase. Implementations are injected by the embedder; the
// committee treats this purely as an opaque async callable.
type LlmEvaluator interface {
	Evaluate(ctx context.Context, state CodeState, action string, rubric EvaluationRubric, phase string, prior []AgentEvaluation, hint SteeringHint) (AgentEvaluation, error)
}

// RewardCorrector applies quantum-inspired error correction to a complex
// reward amplitude before it is stored on a node. The correction algorithm
// itself is out of scope; the core only
// depends on the interface.
type RewardCorrector interface {
	Correct(amplitude complex128) complex128
}

// IdentityRewardCorrector is a no-op RewardCorrector, useful as a default
// and in tests where error correction is not under test.
type IdentityRewardCorrector struct{}

// Correct returns amplitude unchanged.
func (IdentityRewardCorrector) Correct(amplitude complex128) complex128 { return amplitude }

// Telemetry receives CommitteeEvents for external publication, independent
// of the in-process EventBus subscribers.
type Telemetry interface {
	Publish(ctx context.Context, event CommitteeEvent) error
}

// NoopTelemetry discards every event.
type NoopTelemetry struct{}

// Publish implements Telemetry by discarding evt.
func (NoopTelemetry) Publish(context.Context, CommitteeEvent) error { return nil }
