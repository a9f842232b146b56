// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact implements the filesystem-like object union of the
// value layer: directories, files, and symlinks, each a lazy handle
// over a content-addressed payload.
//
// The union is closed: exactly [*Directory], [*File], and [*Symlink]
// implement [Artifact], and every consumption site switches
// exhaustively over the three concrete types rather than testing
// behavior at runtime.
//
// The two algorithms with real teeth live here:
//
//   - Directory merge ([NewDirectory]): folds directories, nested
//     entry literals with path-shaped keys, and deletions into one
//     entry mapping. Nested directories merge recursively; anything
//     else is last-writer-wins. The recursion is an explicit descent
//     over the first-segment/remainder split of each key.
//
//   - Symlink resolution ([Symlink.Resolve]): a symlink target is a
//     template of at most two components (path, artifact, or artifact
//     plus sub-path). Resolution runs against the base artifact and
//     the path walked so far, and [Directory.Get] applies it to every
//     symlink encountered mid-walk, bounded by a hop limit.
//
// Immutability: merge and every other "mutation" construct new
// values; existing directories are never modified in place.
package artifact
