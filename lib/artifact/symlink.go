// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/template"
)

// Symlink is a handle on a symlink artifact. The target is a template
// with at most two components: a plain path string, an artifact, or
// an artifact followed by a sub-path string beginning with a
// separator.
type Symlink struct {
	cell *object.Cell[symlinkObject]
}

type symlinkObject struct {
	target *template.Template
}

type symlinkData struct {
	Target template.Data `cbor:"target"`
}

// NewSymlink creates a symlink artifact. target may be any shape
// accepted by template.New; the resulting component sequence must be
// one of [string], [artifact], or [artifact, "/sub/path"], otherwise
// an error wrapping template.ErrInvalid is returned. An empty target
// is rejected here rather than at resolution time.
func NewSymlink(target any) (*Symlink, error) {
	tmpl, err := template.New(target)
	if err != nil {
		return nil, err
	}
	if _, _, err := splitTarget(tmpl); err != nil {
		return nil, err
	}
	return &Symlink{cell: object.CellFromObject(&symlinkObject{target: tmpl})}, nil
}

func (l *Symlink) isArtifact() {}

// Kind returns object.KindSymlink.
func (l *Symlink) Kind() object.Kind { return object.KindSymlink }

// ValueLeaf marks Symlink as a terminal value for deferred-value
// resolution.
func (l *Symlink) ValueLeaf() {}

// ID returns the symlink's content id, storing it on first call.
func (l *Symlink) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return l.cell.EnsureId(ctx, func(ctx context.Context, obj *symlinkObject) (object.Id, error) {
		targetData, err := obj.target.Data(ctx, s)
		if err != nil {
			return object.Id{}, err
		}
		payload, err := codec.Marshal(symlinkData{Target: targetData})
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding symlink: %w", err)
		}
		id, err := s.Store(ctx, object.KindSymlink, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing symlink: %w", err)
		}
		return id, nil
	})
}

// Target returns the symlink's target template.
func (l *Symlink) Target(ctx context.Context, s object.Store) (*template.Template, error) {
	obj, err := l.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return obj.target, nil
}

// Resolve resolves the symlink against an optional base (the
// artifact containing it plus the symlink's path within that
// artifact). A target that cannot be resolved, or resolves to
// nothing, is an error wrapping [ErrResolution].
func (l *Symlink) Resolve(ctx context.Context, s object.Store, base Artifact, basePath path.Path) (Artifact, error) {
	a, ok, err := l.TryResolve(ctx, s, base, basePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("symlink target does not exist: %w", ErrResolution)
	}
	return a, nil
}

// TryResolve resolves the symlink against an optional base, reporting
// ok=false when the target location does not exist. The four cases:
//
//   - artifact, no path: the artifact itself is the result
//   - no artifact, path: the path is resolved relative to the base
//     (which must be a directory) by taking the base path's parent,
//     joining the symlink's path, and looking it up
//   - artifact and path: the path is looked up inside that artifact
//   - neither: an error wrapping [ErrResolution]
func (l *Symlink) TryResolve(ctx context.Context, s object.Store, base Artifact, basePath path.Path) (Artifact, bool, error) {
	baseDir, _ := base.(*Directory)
	cur, ok, err := l.resolveAt(ctx, s, baseDir, basePath, 0)
	if err != nil || !ok {
		return nil, false, err
	}
	return cur.current, true, nil
}

// resolveAt is the walk-internal resolution step: it returns the full
// cursor (resolved artifact plus the root/path context it lives in)
// so a directory walk can continue past the symlink.
func (l *Symlink) resolveAt(ctx context.Context, s object.Store, root *Directory, walked path.Path, hops int) (cursor, bool, error) {
	if hops > maxSymlinkHops {
		return cursor{}, false, fmt.Errorf("too many symlink hops (%d): %w", hops, ErrResolution)
	}

	obj, err := l.object(ctx, s)
	if err != nil {
		return cursor{}, false, err
	}
	targetArtifact, targetPath, err := splitTarget(obj.target)
	if err != nil {
		return cursor{}, false, err
	}

	switch {
	case targetArtifact != nil && targetPath.IsEmpty():
		// The artifact itself. If it is a directory it becomes the
		// base for any further relative resolution.
		dir, _ := targetArtifact.(*Directory)
		return cursor{root: dir, current: targetArtifact}, true, nil

	case targetArtifact == nil && !targetPath.IsEmpty():
		if root == nil {
			return cursor{}, false, fmt.Errorf("relative symlink target %q with no base directory: %w", targetPath, ErrResolution)
		}
		resolved := walked.Parent().Join(targetPath)
		if resolved.IsExternal() {
			return cursor{}, false, fmt.Errorf("symlink target %q escapes the root: %w", resolved, ErrResolution)
		}
		return root.walkTo(ctx, s, resolved, hops)

	case targetArtifact != nil && !targetPath.IsEmpty():
		dir, ok := targetArtifact.(*Directory)
		if !ok {
			return cursor{}, false, fmt.Errorf("symlink sub-path %q into a non-directory artifact: %w", targetPath, ErrResolution)
		}
		return dir.walkTo(ctx, s, targetPath, hops)

	default:
		return cursor{}, false, fmt.Errorf("symlink with no artifact and empty path: %w", ErrResolution)
	}
}

// splitTarget decomposes a symlink target template into its optional
// artifact and optional path, validating the component shape.
func splitTarget(target *template.Template) (Artifact, path.Path, error) {
	components := target.Components()
	switch len(components) {
	case 0:
		return nil, path.Path{}, fmt.Errorf("empty symlink target: %w", template.ErrInvalid)

	case 1:
		switch c := components[0].(type) {
		case template.Literal:
			return nil, path.Parse(string(c)), nil
		case template.ArtifactRef:
			a, err := asArtifact(c)
			return a, path.Path{}, err
		default:
			return nil, path.Path{}, fmt.Errorf("symlink target component %T: %w", c, template.ErrInvalid)
		}

	case 2:
		ref, ok := components[0].(template.ArtifactRef)
		if !ok {
			return nil, path.Path{}, fmt.Errorf("two-component symlink target must start with an artifact: %w", template.ErrInvalid)
		}
		lit, ok := components[1].(template.Literal)
		if !ok || !strings.HasPrefix(string(lit), path.Separator) {
			return nil, path.Path{}, fmt.Errorf("symlink sub-path must begin with %q: %w", path.Separator, template.ErrInvalid)
		}
		a, err := asArtifact(ref)
		if err != nil {
			return nil, path.Path{}, err
		}
		return a, path.Parse(string(lit)), nil

	default:
		return nil, path.Path{}, fmt.Errorf("symlink target has %d components, want at most 2: %w", len(components), template.ErrInvalid)
	}
}

// asArtifact narrows a template artifact component to the concrete
// artifact union of this package.
func asArtifact(ref template.ArtifactRef) (Artifact, error) {
	a, ok := ref.Artifact.(Artifact)
	if !ok {
		return nil, fmt.Errorf("template artifact component of type %T is not an artifact handle: %w", ref.Artifact, template.ErrInvalid)
	}
	return a, nil
}

func (l *Symlink) object(ctx context.Context, s object.Store) (*symlinkObject, error) {
	return l.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*symlinkObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var d symlinkData
		if err := codec.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("decoding symlink %s: %w", id, err)
		}
		target, err := template.FromData(d.Target, templateArtifactFromId)
		if err != nil {
			return nil, fmt.Errorf("decoding symlink %s target: %w", id, err)
		}
		return &symlinkObject{target: target}, nil
	})
}
