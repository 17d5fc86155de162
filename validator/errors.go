// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validator

import "errors"

// ErrNilSpec names a validator built without an optimization spec. New
// takes the spec by value and does not return it.
var ErrNilSpec = errors.New("validator: optimization spec required")
