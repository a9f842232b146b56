// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/template"
)

// ErrMissingEntry is the sentinel for a required directory entry that
// does not exist. Returned (wrapped) by [Directory.Get]; [Directory.TryGet]
// reports absence without an error.
var ErrMissingEntry = errors.New("missing directory entry")

// ErrResolution is the sentinel for a symlink that cannot be
// resolved: an invalid artifact/path combination, a relative walk
// escaping above the root, or too many symlink hops.
var ErrResolution = errors.New("symlink resolution failed")

// Artifact is the closed union of filesystem-like objects: exactly
// [*Directory], [*File], and [*Symlink] implement it. Consumers
// switch exhaustively over the three concrete types.
type Artifact interface {
	// ID returns the artifact's content id, storing the artifact and
	// its transitive children on first call.
	ID(ctx context.Context, s object.Store) (object.Id, error)

	// Kind returns the object kind of the concrete type.
	Kind() object.Kind

	// ValueLeaf marks artifacts as terminal values for deferred-value
	// resolution (lib/value).
	ValueLeaf()

	isArtifact()
}

// FromId creates an artifact handle for a stored artifact id. The
// payload is fetched lazily. Non-artifact kinds are rejected.
func FromId(id object.Id) (Artifact, error) {
	switch id.Kind() {
	case object.KindDirectory:
		return &Directory{cell: object.CellFromId[directoryObject](id)}, nil
	case object.KindFile:
		return &File{cell: object.CellFromId[fileObject](id)}, nil
	case object.KindSymlink:
		return &Symlink{cell: object.CellFromId[symlinkObject](id)}, nil
	default:
		return nil, fmt.Errorf("artifact handle from %s id", id.Kind())
	}
}

// templateArtifactFromId adapts [FromId] to the raising callback
// shape used by template.FromData.
func templateArtifactFromId(id object.Id) (template.Artifact, error) {
	return FromId(id)
}
