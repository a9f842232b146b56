// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stratum-build/stratum/lib/blob"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/value"
)

// Directory is a handle on a directory artifact: a mapping from entry
// names to artifacts.
type Directory struct {
	cell *object.Cell[directoryObject]
}

type directoryObject struct {
	entries map[string]Artifact
}

type directoryData struct {
	Entries map[string]object.Id `cbor:"entries"`
}

// NewDirectory folds any number of arguments into one entry mapping.
// Each argument may be nil (ignored), an existing *Directory, a
// map[string]any of entry literals, a slice of any of these, or a
// deferred value resolving to one of them.
//
// Literal keys may contain separators: "a/b/c" names an entry three
// levels deep, creating or merging intermediate directories. Literal
// values: nil deletes the entry; string, []byte, and *blob.Blob wrap
// into a new file; an Artifact is stored directly; a nested map
// recurses, seeded with the current occupant when it is a directory.
//
// Merging a *Directory argument recurses entry-wise: where both sides
// hold a directory under the same name the two are merged, otherwise
// the later argument's entry wins.
func NewDirectory(ctx context.Context, s object.Store, args ...any) (*Directory, error) {
	entries := make(map[string]Artifact)
	for _, arg := range args {
		resolved, err := value.Resolve(ctx, arg)
		if err != nil {
			return nil, err
		}
		if err := mergeArg(ctx, s, entries, resolved); err != nil {
			return nil, err
		}
	}
	return &Directory{cell: object.CellFromObject(&directoryObject{entries: entries})}, nil
}

func mergeArg(ctx context.Context, s object.Store, entries map[string]Artifact, arg any) error {
	switch arg := arg.(type) {
	case nil:
		return nil
	case *Directory:
		incoming, err := arg.Entries(ctx, s)
		if err != nil {
			return err
		}
		// Deterministic order keeps nested merges reproducible.
		for _, name := range sortedKeys(incoming) {
			incomingEntry := incoming[name]
			existingDir, existingIsDir := entries[name].(*Directory)
			incomingDir, incomingIsDir := incomingEntry.(*Directory)
			if existingIsDir && incomingIsDir {
				merged, err := NewDirectory(ctx, s, existingDir, incomingDir)
				if err != nil {
					return err
				}
				entries[name] = merged
			} else {
				entries[name] = incomingEntry
			}
		}
		return nil
	case []any:
		for _, nested := range arg {
			if err := mergeArg(ctx, s, entries, nested); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for _, key := range sortedKeys(arg) {
			if err := mergeEntry(ctx, s, entries, key, arg[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("directory argument of type %T: %w", arg, value.ErrInvalidValue)
	}
}

// mergeEntry merges a single literal key/value pair. The key is split
// on separators: the first segment names the direct entry, the
// remainder describes a nested sub-path handled by a recursive
// directory merge.
func mergeEntry(ctx context.Context, s object.Store, entries map[string]Artifact, key string, v any) error {
	keyPath := path.Parse(key)
	if keyPath.IsExternal() || keyPath.IsEmpty() {
		return fmt.Errorf("directory entry key %q: %w", key, path.ErrInvalid)
	}
	segments := keyPath.Segments()
	first, rest := segments[0], segments[1:]

	// Sub-path: recursively merge {remainder: v} into whatever
	// directory occupies the first segment, creating one if absent or
	// if the occupant is not a directory.
	if len(rest) > 0 {
		seed, _ := entries[first].(*Directory)
		nested, err := NewDirectory(ctx, s, seed, map[string]any{strings.Join(rest, path.Separator): v})
		if err != nil {
			return err
		}
		entries[first] = nested
		return nil
	}

	switch v := v.(type) {
	case nil:
		delete(entries, first)
	case string:
		entries[first] = NewFileFromString(v)
	case []byte:
		entries[first] = NewFileFromBytes(v)
	case *blob.Blob:
		entries[first] = NewFile(v, nil)
	case Artifact:
		entries[first] = v
	case map[string]any:
		seed, _ := entries[first].(*Directory)
		nested, err := NewDirectory(ctx, s, seed, v)
		if err != nil {
			return err
		}
		entries[first] = nested
	default:
		return fmt.Errorf("directory entry %q of type %T: %w", key, v, value.ErrInvalidValue)
	}
	return nil
}

func (d *Directory) isArtifact() {}

// Kind returns object.KindDirectory.
func (d *Directory) Kind() object.Kind { return object.KindDirectory }

// ValueLeaf marks Directory as a terminal value for deferred-value
// resolution.
func (d *Directory) ValueLeaf() {}

// ID returns the directory's content id, storing the directory and
// its transitive children on first call. Entry ids are computed
// concurrently.
func (d *Directory) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return d.cell.EnsureId(ctx, func(ctx context.Context, obj *directoryObject) (object.Id, error) {
		data := directoryData{Entries: make(map[string]object.Id, len(obj.entries))}

		group, groupCtx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for name, entry := range obj.entries {
			group.Go(func() error {
				id, err := entry.ID(groupCtx, s)
				if err != nil {
					return fmt.Errorf("storing directory entry %q: %w", name, err)
				}
				mu.Lock()
				data.Entries[name] = id
				mu.Unlock()
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return object.Id{}, err
		}

		payload, err := codec.Marshal(data)
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding directory: %w", err)
		}
		id, err := s.Store(ctx, object.KindDirectory, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing directory: %w", err)
		}
		return id, nil
	})
}

// Entries returns a copy of the entry mapping.
func (d *Directory) Entries(ctx context.Context, s object.Store) (map[string]Artifact, error) {
	obj, err := d.object(ctx, s)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]Artifact, len(obj.entries))
	for name, entry := range obj.entries {
		entries[name] = entry
	}
	return entries, nil
}

// Walk calls fn for every descendant of the directory, depth-first,
// entries in name order, with the path relative to d. Directories are
// visited before their contents. Symlinks are yielded as-is, not
// resolved. Returning an error from fn aborts the walk.
func (d *Directory) Walk(ctx context.Context, s object.Store, fn func(p path.Path, a Artifact) error) error {
	return d.walk(ctx, s, path.Path{}, fn)
}

func (d *Directory) walk(ctx context.Context, s object.Store, prefix path.Path, fn func(p path.Path, a Artifact) error) error {
	entries, err := d.Entries(ctx, s)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(entries) {
		entry := entries[name]
		entryPath := prefix.Push(name)
		if err := fn(entryPath, entry); err != nil {
			return err
		}
		if sub, ok := entry.(*Directory); ok {
			if err := sub.walk(ctx, s, entryPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the artifact at p, resolving symlinks encountered
// mid-walk. A missing entry or failed resolution is an error wrapping
// [ErrMissingEntry].
func (d *Directory) Get(ctx context.Context, s object.Store, p path.Path) (Artifact, error) {
	a, ok, err := d.TryGet(ctx, s, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", p, ErrMissingEntry)
	}
	return a, nil
}

// TryGet returns the artifact at p, or ok=false if any component of
// the walk is absent. Symlinks encountered mid-walk are resolved
// relative to the path walked so far; a symlink in the final position
// is returned unresolved.
func (d *Directory) TryGet(ctx context.Context, s object.Store, p path.Path) (Artifact, bool, error) {
	cur, ok, err := d.walkTo(ctx, s, p, 0)
	if err != nil || !ok {
		return nil, false, err
	}
	return cur.current, true, nil
}

// cursor tracks walk state: the directory serving as the base for
// relative symlink targets, the path walked so far relative to that
// base, and the artifact currently under the cursor.
type cursor struct {
	root    *Directory
	walked  path.Path
	current Artifact
}

// maxSymlinkHops bounds symlink traversal during a walk, matching the
// kernel's ELOOP limit.
const maxSymlinkHops = 40

func (d *Directory) walkTo(ctx context.Context, s object.Store, p path.Path, hops int) (cursor, bool, error) {
	if p.IsExternal() {
		return cursor{}, false, fmt.Errorf("path %q escapes the directory root: %w", p, ErrResolution)
	}

	cur := cursor{root: d, current: d}
	remaining := p.Segments()
	for len(remaining) > 0 {
		// A symlink in a non-final position must be resolved before
		// the walk can continue past it. Every resolution counts as a
		// hop so cyclic links terminate.
		if link, ok := cur.current.(*Symlink); ok {
			hops++
			next, ok, err := link.resolveAt(ctx, s, cur.root, cur.walked, hops)
			if err != nil || !ok {
				return cursor{}, false, err
			}
			cur = next
			continue
		}

		dir, ok := cur.current.(*Directory)
		if !ok {
			// Descending into a file (or unresolved artifact) fails the
			// lookup rather than erroring, mirroring a dangling path.
			return cursor{}, false, nil
		}
		entries, err := dir.Entries(ctx, s)
		if err != nil {
			return cursor{}, false, err
		}
		entry, ok := entries[remaining[0]]
		if !ok {
			return cursor{}, false, nil
		}
		cur.walked = cur.walked.Push(remaining[0])
		cur.current = entry
		remaining = remaining[1:]
	}
	return cur, true, nil
}

func (d *Directory) object(ctx context.Context, s object.Store) (*directoryObject, error) {
	return d.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*directoryObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var data directoryData
		if err := codec.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding directory %s: %w", id, err)
		}
		entries := make(map[string]Artifact, len(data.Entries))
		for name, entryId := range data.Entries {
			entry, err := FromId(entryId)
			if err != nil {
				return nil, fmt.Errorf("decoding directory %s entry %q: %w", id, name, err)
			}
			entries[name] = entry
		}
		return &directoryObject{entries: entries}, nil
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
