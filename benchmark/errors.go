// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package benchmark

import "errors"

// ErrInsufficientSamples is returned by comparisons that need a minimum
// sample count to produce a meaningful significance estimate.
var ErrInsufficientSamples = errors.New("benchmark: insufficient samples for comparison")
