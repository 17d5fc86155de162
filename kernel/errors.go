// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "errors"

// Shared kernel errors. Recoverable by design: callers decide whether to
// retry, drop, or surface them.
var (
	// ErrBusClosed is returned by Publish/Subscribe once Close has run.
	ErrBusClosed = errors.New("kernel: event bus closed")

	// ErrCacheFull is returned by Cache.Put when an insertion triggers
	// eviction; it carries no payload of its own, the running eviction
	// total is read from CacheStats.Evictions.
	ErrCacheFull = errors.New("kernel: cache full, evicting entries")

	// ErrEmptyObjective is returned by EvaluationRubric.Validate when
	// Objective is the empty string.
	ErrEmptyObjective = errors.New("kernel: rubric objective cannot be empty")

	// ErrMissingRequiredGuideline is returned when ScoringGuidelines is
	// missing one of alignment/quality/safety.
	ErrMissingRequiredGuideline = errors.New("kernel: rubric missing required scoring guideline")
)
