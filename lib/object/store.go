// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Load] when no object with the
// requested id exists in the store.
var ErrNotFound = errors.New("object not found")

// Store is the narrow boundary between the value layer and whatever
// engine actually persists objects. The value layer only ever stores
// and loads canonical payloads; everything else (compression,
// encryption, caching, replication) is the store's business.
//
// Implementations must derive ids with [ComputeId] so that every
// store agrees on addressing, and must verify on Load that returned
// payloads match the requested id if the backing medium is untrusted.
type Store interface {
	// Store writes the canonical payload for an object of the given
	// kind and returns its content-derived id. Storing the same
	// payload twice is a no-op returning the same id.
	Store(ctx context.Context, kind Kind, payload []byte) (Id, error)

	// Load returns the canonical payload for id, or a [ErrNotFound]
	// wrapping error if the object does not exist.
	Load(ctx context.Context, id Id) ([]byte, error)
}
