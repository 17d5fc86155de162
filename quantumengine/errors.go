// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import "errors"

var (
	ErrTreeEmpty    = errors.New("quantumengine: tree has no nodes")
	ErrNodeNotFound = errors.New("quantumengine: node not found")
	ErrNoChildren   = errors.New("quantumengine: node has no children to select among")
)
