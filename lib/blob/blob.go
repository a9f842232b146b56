// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob implements the chunked byte-sequence object: a binary
// tree whose leaves hold raw bytes and whose branches hold ordered,
// sized children. The tree shape lets the engine deduplicate and
// stream large contents; the value layer only ever deals in handles.
//
// Blobs are immutable once constructed. A branch records each child's
// size at construction, so Size never has to visit leaves, and the
// size of every node equals the sum of the leaf byte lengths in its
// subtree for any nesting of merges.
package blob

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
)

// Blob is a handle on a byte-sequence object: either a content id or
// an in-memory node, materialized lazily in both directions.
type Blob struct {
	cell *object.Cell[node]
}

// node is the in-memory object form: exactly one of bytes (leaf) or
// children (branch) is meaningful, selected by leaf.
type node struct {
	leaf     bool
	bytes    []byte
	children []child
}

// child pairs a child blob with its precomputed size.
type child struct {
	blob *Blob
	size uint64
}

// data is the canonical payload form.
type data struct {
	Leaf     bool        `cbor:"leaf"`
	Bytes    []byte      `cbor:"bytes,omitempty"`
	Children []childData `cbor:"children,omitempty"`
}

type childData struct {
	Blob object.Id `cbor:"blob"`
	Size uint64    `cbor:"size"`
}

// FromBytes creates a leaf blob holding b. The bytes are not copied;
// the caller must not modify them afterwards.
func FromBytes(b []byte) *Blob {
	return &Blob{cell: object.CellFromObject(&node{leaf: true, bytes: b})}
}

// FromString creates a leaf blob holding the UTF-8 bytes of s.
func FromString(s string) *Blob {
	return FromBytes([]byte(s))
}

// FromId creates a blob handle for a stored blob id. The payload is
// fetched lazily on first inspection.
func FromId(id object.Id) (*Blob, error) {
	if id.Kind() != object.KindBlob {
		return nil, fmt.Errorf("blob handle from %s id", id.Kind())
	}
	return &Blob{cell: object.CellFromId[node](id)}, nil
}

// Merge combines any number of blobs into one. Zero inputs yield an
// empty leaf; one input is returned unchanged; more than one are
// wrapped into a branch recording each child's size. Child sizes are
// computed concurrently where children are independent.
func Merge(ctx context.Context, s object.Store, blobs ...*Blob) (*Blob, error) {
	switch len(blobs) {
	case 0:
		return FromBytes(nil), nil
	case 1:
		return blobs[0], nil
	}

	children := make([]child, len(blobs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, b := range blobs {
		group.Go(func() error {
			size, err := b.Size(groupCtx, s)
			if err != nil {
				return err
			}
			children[i] = child{blob: b, size: size}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("sizing blob children: %w", err)
	}
	return &Blob{cell: object.CellFromObject(&node{children: children})}, nil
}

// ID returns the blob's content id, storing the blob (and, for
// branches, every child not yet stored) on first call.
func (b *Blob) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return b.cell.EnsureId(ctx, func(ctx context.Context, n *node) (object.Id, error) {
		return lower(ctx, s, n)
	})
}

// ValueLeaf marks Blob as a terminal value for deferred-value
// resolution (lib/value).
func (*Blob) ValueLeaf() {}

// Size returns the total byte length: the raw length for a leaf, the
// sum of child sizes for a branch.
func (b *Blob) Size(ctx context.Context, s object.Store) (uint64, error) {
	n, err := b.object(ctx, s)
	if err != nil {
		return 0, err
	}
	if n.leaf {
		return uint64(len(n.bytes)), nil
	}
	var total uint64
	for _, c := range n.children {
		total += c.size
	}
	return total, nil
}

// Bytes materializes the full contents by walking the tree in order.
func (b *Blob) Bytes(ctx context.Context, s object.Store) ([]byte, error) {
	n, err := b.object(ctx, s)
	if err != nil {
		return nil, err
	}
	if n.leaf {
		return n.bytes, nil
	}
	var out []byte
	for _, c := range n.children {
		childBytes, err := c.blob.Bytes(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, childBytes...)
	}
	return out, nil
}

// Text materializes the contents as a string.
func (b *Blob) Text(ctx context.Context, s object.Store) (string, error) {
	raw, err := b.Bytes(ctx, s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// object forces the in-memory form, loading the payload if the handle
// only holds an id.
func (b *Blob) object(ctx context.Context, s object.Store) (*node, error) {
	return b.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*node, error) {
		return raise(ctx, s, id)
	})
}

func lower(ctx context.Context, s object.Store, n *node) (object.Id, error) {
	var d data
	if n.leaf {
		d = data{Leaf: true, Bytes: n.bytes}
	} else {
		d.Children = make([]childData, len(n.children))
		// Store children concurrently; they are independent subtrees.
		group, groupCtx := errgroup.WithContext(ctx)
		for i, c := range n.children {
			group.Go(func() error {
				id, err := c.blob.ID(groupCtx, s)
				if err != nil {
					return err
				}
				d.Children[i] = childData{Blob: id, Size: c.size}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return object.Id{}, err
		}
	}

	payload, err := codec.Marshal(d)
	if err != nil {
		return object.Id{}, fmt.Errorf("encoding blob: %w", err)
	}
	id, err := s.Store(ctx, object.KindBlob, payload)
	if err != nil {
		return object.Id{}, fmt.Errorf("storing blob: %w", err)
	}
	return id, nil
}

func raise(ctx context.Context, s object.Store, id object.Id) (*node, error) {
	payload, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	var d data
	if err := codec.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decoding blob %s: %w", id, err)
	}
	if d.Leaf {
		return &node{leaf: true, bytes: d.Bytes}, nil
	}
	children := make([]child, len(d.Children))
	for i, cd := range d.Children {
		childBlob, err := FromId(cd.Blob)
		if err != nil {
			return nil, fmt.Errorf("decoding blob %s child %d: %w", id, i, err)
		}
		children[i] = child{blob: childBlob, size: cd.Size}
	}
	return &node{children: children}, nil
}
