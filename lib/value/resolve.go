// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidValue is the sentinel for a value of an unrecognized
// shape offered to the resolver or to a combinator built on it.
var ErrInvalidValue = errors.New("invalid value")

// Deferred is a deferred computation producing a value. The result
// may itself contain deferred positions; [Resolve] chases them until
// everything is materialized.
type Deferred = func(ctx context.Context) (any, error)

// Leaf marks fully materialized domain values: Resolve returns them
// unchanged. Implemented by path.Path, *blob.Blob, the artifact
// types, *template.Template, and the target composites, none of
// which this package imports. This keeps the resolver generic.
type Leaf interface {
	ValueLeaf()
}

// Resolve materializes v: deferred computations are run (including
// deferred positions returned by other deferred computations), slices
// resolve element-wise and maps field-wise. Positions are
// independent, so they resolve concurrently and results recombine
// positionally.
// Primitives, byte slices, [Leaf] values, and mutation descriptors
// pass through. Any other shape is an error wrapping
// [ErrInvalidValue].
func Resolve(ctx context.Context, v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil

	case Deferred:
		inner, err := v(ctx)
		if err != nil {
			return nil, err
		}
		return Resolve(ctx, inner)

	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil

	case []byte:
		return v, nil

	case *Mutation:
		return v.resolve(ctx)

	case Leaf:
		return v, nil

	case []any:
		resolved := make([]any, len(v))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, element := range v {
			group.Go(func() error {
				r, err := Resolve(groupCtx, element)
				if err != nil {
					return err
				}
				resolved[i] = r
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		return resolved, nil

	case map[string]any:
		// Fan out per field; writes go to a positional slice so no
		// lock is needed, then the map is assembled afterwards.
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		resolved := make([]any, len(keys))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, key := range keys {
			group.Go(func() error {
				r, err := Resolve(groupCtx, v[key])
				if err != nil {
					return fmt.Errorf("resolving field %q: %w", key, err)
				}
				resolved[i] = r
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(keys))
		for i, key := range keys {
			out[key] = resolved[i]
		}
		return out, nil

	default:
		return nil, fmt.Errorf("value of type %T: %w", v, ErrInvalidValue)
	}
}
