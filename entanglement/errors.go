// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entanglement

import "errors"

var (
	// ErrSelfLink is returned by Add when a node is entangled with itself.
	ErrSelfLink = errors.New("entanglement: a node cannot be entangled with itself")
	// ErrNodeNotFound is returned when an operation names a node absent
	// from the graph.
	ErrNodeNotFound = errors.New("entanglement: node not found")
)
