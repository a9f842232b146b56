// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package module

import (
	"context"
	"fmt"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
)

// Package is a handle on a stored package: a root directory of source
// files plus the pinned package ids of its dependencies, keyed by
// import specifier.
type Package struct {
	cell *object.Cell[packageObject]
}

type packageObject struct {
	root         *artifact.Directory
	dependencies map[string]object.Id
}

type packageData struct {
	Root         object.Id            `cbor:"root"`
	Dependencies map[string]object.Id `cbor:"dependencies,omitempty"`
}

// NewPackage wraps a root directory and its resolved dependency pins
// into a package handle.
func NewPackage(root *artifact.Directory, dependencies map[string]object.Id) *Package {
	deps := make(map[string]object.Id, len(dependencies))
	for specifier, id := range dependencies {
		deps[specifier] = id
	}
	return &Package{cell: object.CellFromObject(&packageObject{
		root:         root,
		dependencies: deps,
	})}
}

// PackageFromId wraps an already-stored package id.
func PackageFromId(id object.Id) (*Package, error) {
	if id.Kind() != object.KindPackage {
		return nil, fmt.Errorf("id %s is not a package", id)
	}
	return &Package{cell: object.CellFromId[packageObject](id)}, nil
}

// ValueLeaf marks Package as a terminal value for deferred-value
// resolution.
func (p *Package) ValueLeaf() {}

// ID returns the package's content id, storing it and its root
// directory on first call.
func (p *Package) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return p.cell.EnsureId(ctx, func(ctx context.Context, obj *packageObject) (object.Id, error) {
		rootId, err := obj.root.ID(ctx, s)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing package root: %w", err)
		}
		payload, err := codec.Marshal(packageData{
			Root:         rootId,
			Dependencies: obj.dependencies,
		})
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding package: %w", err)
		}
		id, err := s.Store(ctx, object.KindPackage, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing package: %w", err)
		}
		return id, nil
	})
}

// Root returns the package's root directory.
func (p *Package) Root(ctx context.Context, s object.Store) (*artifact.Directory, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return obj.root, nil
}

// Dependency returns the pinned package id for an import specifier.
func (p *Package) Dependency(ctx context.Context, s object.Store, specifier string) (object.Id, bool, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return object.Id{}, false, err
	}
	id, ok := obj.dependencies[specifier]
	return id, ok, nil
}

// Dependencies returns a copy of the dependency pin mapping.
func (p *Package) Dependencies(ctx context.Context, s object.Store) (map[string]object.Id, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	deps := make(map[string]object.Id, len(obj.dependencies))
	for specifier, id := range obj.dependencies {
		deps[specifier] = id
	}
	return deps, nil
}

func (p *Package) object(ctx context.Context, s object.Store) (*packageObject, error) {
	return p.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*packageObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var data packageData
		if err := codec.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding package %s: %w", id, err)
		}
		rootArtifact, err := artifact.FromId(data.Root)
		if err != nil {
			return nil, fmt.Errorf("decoding package %s root: %w", id, err)
		}
		root, ok := rootArtifact.(*artifact.Directory)
		if !ok {
			return nil, fmt.Errorf("package %s root %s is not a directory", id, data.Root)
		}
		return &packageObject{root: root, dependencies: data.Dependencies}, nil
	})
}
