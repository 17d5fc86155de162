// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"fmt"

	"github.com/sweetmcp/cognitive-core/kernel"
)

// BuildRubric derives an EvaluationRubric from an OptimizationSpec and the
// caller's objective. The required alignment/quality/safety guidelines are
// always present; additional keys reflect the spec's baseline metrics,
// content-type restrictions, and evolution rules.
func BuildRubric(spec kernel.OptimizationSpec, objective string) kernel.EvaluationRubric {
	guidelines := map[string]float64{
		"alignment": 1.0,
		"quality":   1.0,
		"safety":    1.0,
	}

	constraints := []string{
		fmt.Sprintf("max_latency_increase<=%.2f%%", spec.ContentType.Restrictions.MaxLatencyIncrease),
		fmt.Sprintf("max_memory_increase<=%.2f%%", spec.ContentType.Restrictions.MaxMemoryIncrease),
	}

	criteria := make([]string, 0, len(spec.EvolutionRules)+1)
	criteria = append(criteria, "maintains or improves baseline performance score")
	for _, rule := range spec.EvolutionRules {
		criteria = append(criteria, rule.Action+": "+rule.Description)
	}

	return kernel.EvaluationRubric{
		Objective:         objective,
		SuccessCriteria:   criteria,
		Constraints:       constraints,
		ScoringGuidelines: guidelines,
	}
}
