// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"

	"github.com/sweetmcp/cognitive-core/committee"
	"github.com/sweetmcp/cognitive-core/kernel"
	"github.com/sweetmcp/cognitive-core/validator"
)

// committeeReward adapts a Committee into mcts.RewardEvaluator: every
// simulated action is scored by a full Initial->Review->Refine consensus
// round rather than a bespoke reward function, realizing the "classical
// MCTS Simulate step is handled by the Committee" coupling.
type committeeReward struct {
	committee *committee.Committee
	spec      kernel.OptimizationSpec
	objective string
}

// Reward implements mcts.RewardEvaluator.
func (r committeeReward) Reward(ctx context.Context, state kernel.CodeState, action string) (float64, error) {
	decision, err := r.committee.EvaluateAction(ctx, state, action, r.spec, r.objective)
	if err != nil {
		return 0, err
	}
	return decision.OverallScore, nil
}

// validatedExpander adapts the Validator and kernel.ApplyAction into
// mcts.ActionExpander: CandidateActions only offers spec-declared
// evolution rules the Validator currently accepts for state, so an
// invalid action can never enter the search tree in the first place.
type validatedExpander struct {
	validator *validator.Validator
	spec      kernel.OptimizationSpec
}

// CandidateActions implements mcts.ActionExpander.
func (e validatedExpander) CandidateActions(state kernel.CodeState) []string {
	actions := make([]string, 0, len(e.spec.EvolutionRules))
	for _, rule := range e.spec.EvolutionRules {
		if e.validator.Validate(rule.Action, state).IsValid {
			actions = append(actions, rule.Action)
		}
	}
	return actions
}

// Apply implements mcts.ActionExpander, mechanically applying action via
// the same latency/memory delta table the Validator consults for its own
// spec-compliance check.
func (e validatedExpander) Apply(state kernel.CodeState, action string) kernel.CodeState {
	return kernel.ApplyAction(state, action, applyRiskDelta)
}
