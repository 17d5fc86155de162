// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import "errors"

var (
	// ErrTimeout is returned (internally) when an evaluation round misses
	// its deadline; the committee never lets this escape to the caller —
	// it is mapped to a conservative ConsensusDecision first.
	ErrTimeout = errors.New("committee: evaluation deadline exceeded")

	// ErrCircuitOpen is returned when the circuit breaker is open and a
	// call is rejected without attempting the underlying evaluator.
	ErrCircuitOpen = errors.New("committee: circuit breaker open")
)
