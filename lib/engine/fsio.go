// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/blob"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/template"
)

// ImportTree converts a host filesystem tree into an artifact:
// directories recurse, regular files keep their executable bit,
// symlinks keep their literal target. Nothing is stored until the
// resulting artifact's id is requested.
func ImportTree(ctx context.Context, s object.Store, root string) (artifact.Artifact, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", root, err)
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		linkTarget, err := os.Readlink(root)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", root, err)
		}
		return artifact.NewSymlink(linkTarget)

	case info.IsDir():
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", root, err)
		}
		entries := make(map[string]any, len(dirEntries))
		for _, entry := range dirEntries {
			child, err := ImportTree(ctx, s, filepath.Join(root, entry.Name()))
			if err != nil {
				return nil, err
			}
			entries[entry.Name()] = child
		}
		return artifact.NewDirectory(ctx, s, entries)

	case info.Mode().IsRegular():
		contents, err := os.ReadFile(root)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", root, err)
		}
		return artifact.NewFile(blob.FromBytes(contents), &artifact.FileOptions{
			Executable: info.Mode()&0o111 != 0,
		}), nil

	default:
		return nil, fmt.Errorf("importing %s: unsupported file type %s", root, info.Mode())
	}
}

// ExportTree writes an artifact to the host filesystem at dest.
// Symlinks whose target carries an artifact handle have no host
// representation and are an error; resolve them first.
func ExportTree(ctx context.Context, s object.Store, a artifact.Artifact, dest string) error {
	switch a := a.(type) {
	case *artifact.Directory:
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("exporting %s: %w", dest, err)
		}
		entries, err := a.Entries(ctx, s)
		if err != nil {
			return err
		}
		for name, entry := range entries {
			if err := ExportTree(ctx, s, entry, filepath.Join(dest, name)); err != nil {
				return err
			}
		}
		return nil

	case *artifact.File:
		contents, err := a.Contents(ctx, s)
		if err != nil {
			return err
		}
		data, err := contents.Bytes(ctx, s)
		if err != nil {
			return err
		}
		executable, err := a.Executable(ctx, s)
		if err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if executable {
			mode = 0o755
		}
		if err := os.WriteFile(dest, data, mode); err != nil {
			return fmt.Errorf("exporting %s: %w", dest, err)
		}
		return nil

	case *artifact.Symlink:
		targetTmpl, err := a.Target(ctx, s)
		if err != nil {
			return err
		}
		components := targetTmpl.Components()
		if len(components) != 1 {
			return fmt.Errorf("exporting %s: symlink target is not a plain path", dest)
		}
		lit, ok := components[0].(template.Literal)
		if !ok {
			return fmt.Errorf("exporting %s: symlink target is not a plain path", dest)
		}
		if err := os.Symlink(string(lit), dest); err != nil {
			return fmt.Errorf("exporting %s: %w", dest, err)
		}
		return nil

	default:
		return fmt.Errorf("exporting %s: unsupported artifact %T", dest, a)
	}
}
