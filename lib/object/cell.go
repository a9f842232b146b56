// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"context"
	"sync"
)

// Cell is the two-state core of every object handle. It holds either
// a content id, an in-memory object, or (after materialization) both.
// The constructors make the empty state unrepresentable: a Cell
// always carries at least one of the two.
//
// EnsureId and EnsureObject memoize their result, so the expensive
// direction (encoding and storing, or loading and decoding) runs at
// most once per cell. The mutex is held across the lower/raise call;
// concurrent callers of the same cell block until the first
// materialization completes rather than duplicating store traffic.
type Cell[O any] struct {
	mu     sync.Mutex
	id     *Id
	object *O
}

// CellFromId creates a cell holding only a content id. The object is
// fetched lazily on first EnsureObject.
func CellFromId[O any](id Id) *Cell[O] {
	return &Cell[O]{id: &id}
}

// CellFromObject creates a cell holding only an in-memory object. The
// id is computed lazily on first EnsureId.
func CellFromObject[O any](obj *O) *Cell[O] {
	return &Cell[O]{object: obj}
}

// CachedId returns the id if it has already been materialized,
// without touching the store.
func (c *Cell[O]) CachedId() (Id, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == nil {
		return Id{}, false
	}
	return *c.id, true
}

// CachedObject returns the in-memory object if it has already been
// materialized, without touching the store.
func (c *Cell[O]) CachedObject() (*O, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.object == nil {
		return nil, false
	}
	return c.object, true
}

// EnsureId returns the cell's id, computing and memoizing it via
// lower if only the in-memory object is held. lower receives the
// object and is expected to encode it and store it, returning the
// content id.
func (c *Cell[O]) EnsureId(ctx context.Context, lower func(context.Context, *O) (Id, error)) (Id, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != nil {
		return *c.id, nil
	}
	id, err := lower(ctx, c.object)
	if err != nil {
		return Id{}, err
	}
	c.id = &id
	return id, nil
}

// EnsureObject returns the cell's in-memory object, fetching and
// memoizing it via raise if only the id is held. raise receives the
// id and is expected to load and decode the object.
func (c *Cell[O]) EnsureObject(ctx context.Context, raise func(context.Context, Id) (*O, error)) (*O, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.object != nil {
		return c.object, nil
	}
	obj, err := raise(ctx, *c.id)
	if err != nil {
		return nil, err
	}
	c.object = obj
	return obj, nil
}
