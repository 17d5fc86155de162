// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import "errors"

// ErrNoAgents is returned by SubmitOptimization when the controller was
// constructed without any committee evaluators to score candidate actions.
var ErrNoAgents = errors.New("engine: no committee agents configured")
