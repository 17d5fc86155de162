// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"crypto/sha256"

	"github.com/luxfi/ids"
)

// Fingerprint derives a collision-resistant 128-bit (well, 256-bit SHA-2
// reinterpreted through ids.ID's fixed-width array) identifier for a
// (action, objective) pair. The committee uses this as its evaluation cache
// key; reusing ids.ID here — rather than a bespoke hash type — keeps
// fingerprints comparable and loggable the same way every other identifier
// in the consensus stack is.
func Fingerprint(action, objective string) ids.ID {
	h := sha256.New()
	h.Write([]byte(action))
	h.Write([]byte{0})
	h.Write([]byte(objective))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return ids.ID(out)
}

// FingerprintHex is the hex-truncated form used for map/cache keys where a
// string, not a fixed-width array, is more convenient.
func FingerprintHex(action, objective string) string {
	id := Fingerprint(action, objective)
	return id.String()[:16]
}
