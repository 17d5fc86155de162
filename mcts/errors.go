// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcts

import "errors"

var (
	// ErrNoRootState names a tree built without a root CodeState. NewTree
	// always takes a root state and does not return it.
	ErrNoRootState = errors.New("mcts: root state required")
	// ErrNodeNotFound names an arena index that does not resolve to a live
	// node. Tree.Node reports that case with a false ok value instead.
	ErrNodeNotFound = errors.New("mcts: node index out of range")
	// ErrTerminalNode names an expansion attempted on a terminal node. The
	// tree skips terminal nodes during expansion and does not return it.
	ErrTerminalNode = errors.New("mcts: cannot expand a terminal node")
)
