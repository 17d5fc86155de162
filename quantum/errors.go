// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantum

import "errors"

var (
	ErrInvalidState  = errors.New("quantum: invalid node state")
	ErrChannelClosed = errors.New("quantum: channel closed")
	ErrQuantumError  = errors.New("quantum: operation failed")
	ErrResourceError = errors.New("quantum: resource exhausted")
	ErrTimeout       = errors.New("quantum: operation timed out")
)
