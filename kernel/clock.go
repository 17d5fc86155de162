// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "time"

// Clock abstracts wall-clock access so deadline-driven code (committee
// timeouts, rolling metrics, cache TTLs) can be driven deterministically in
// tests via a hand-written fake.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
