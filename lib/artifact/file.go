// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stratum-build/stratum/lib/blob"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
)

// File is a handle on a file artifact: blob contents, an executable
// flag, and a set of artifact references used for dependency tracking
// (artifacts the file's contents mention and must outlive).
type File struct {
	cell *object.Cell[fileObject]
}

type fileObject struct {
	contents   *blob.Blob
	executable bool
	references []Artifact
}

type fileData struct {
	Contents   object.Id   `cbor:"contents"`
	Executable bool        `cbor:"executable,omitempty"`
	References []object.Id `cbor:"references,omitempty"`
}

// FileOptions carries the optional fields of a file.
type FileOptions struct {
	// Executable sets the executable bit.
	Executable bool
	// References are artifacts the file's contents refer to.
	References []Artifact
}

// NewFile creates a file artifact from blob contents. options may be
// nil for a plain non-executable file with no references.
func NewFile(contents *blob.Blob, options *FileOptions) *File {
	obj := fileObject{contents: contents}
	if options != nil {
		obj.executable = options.Executable
		obj.references = append([]Artifact(nil), options.References...)
	}
	return &File{cell: object.CellFromObject(&obj)}
}

// NewFileFromBytes creates a plain file holding b.
func NewFileFromBytes(b []byte) *File {
	return NewFile(blob.FromBytes(b), nil)
}

// NewFileFromString creates a plain file holding the UTF-8 bytes of s.
func NewFileFromString(s string) *File {
	return NewFile(blob.FromString(s), nil)
}

func (f *File) isArtifact() {}

// Kind returns object.KindFile.
func (f *File) Kind() object.Kind { return object.KindFile }

// ValueLeaf marks File as a terminal value for deferred-value
// resolution.
func (f *File) ValueLeaf() {}

// ID returns the file's content id, storing the file and its contents
// on first call.
func (f *File) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return f.cell.EnsureId(ctx, func(ctx context.Context, obj *fileObject) (object.Id, error) {
		var d fileData
		d.Executable = obj.executable

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			id, err := obj.contents.ID(groupCtx, s)
			if err != nil {
				return fmt.Errorf("storing file contents: %w", err)
			}
			d.Contents = id
			return nil
		})
		if len(obj.references) > 0 {
			d.References = make([]object.Id, len(obj.references))
			for i, ref := range obj.references {
				group.Go(func() error {
					id, err := ref.ID(groupCtx, s)
					if err != nil {
						return fmt.Errorf("storing file reference: %w", err)
					}
					d.References[i] = id
					return nil
				})
			}
		}
		if err := group.Wait(); err != nil {
			return object.Id{}, err
		}

		payload, err := codec.Marshal(d)
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding file: %w", err)
		}
		id, err := s.Store(ctx, object.KindFile, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing file: %w", err)
		}
		return id, nil
	})
}

// Contents returns the file's blob handle.
func (f *File) Contents(ctx context.Context, s object.Store) (*blob.Blob, error) {
	obj, err := f.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return obj.contents, nil
}

// Executable reports whether the executable bit is set.
func (f *File) Executable(ctx context.Context, s object.Store) (bool, error) {
	obj, err := f.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.executable, nil
}

// References returns the file's artifact references.
func (f *File) References(ctx context.Context, s object.Store) ([]Artifact, error) {
	obj, err := f.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return append([]Artifact(nil), obj.references...), nil
}

// Text materializes the file contents as a string.
func (f *File) Text(ctx context.Context, s object.Store) (string, error) {
	contents, err := f.Contents(ctx, s)
	if err != nil {
		return "", err
	}
	return contents.Text(ctx, s)
}

func (f *File) object(ctx context.Context, s object.Store) (*fileObject, error) {
	return f.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*fileObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var d fileData
		if err := codec.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("decoding file %s: %w", id, err)
		}
		contents, err := blob.FromId(d.Contents)
		if err != nil {
			return nil, fmt.Errorf("decoding file %s: %w", id, err)
		}
		obj := fileObject{contents: contents, executable: d.Executable}
		for _, refId := range d.References {
			ref, err := FromId(refId)
			if err != nil {
				return nil, fmt.Errorf("decoding file %s reference: %w", id, err)
			}
			obj.references = append(obj.references, ref)
		}
		return &obj, nil
	})
}
