// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package value implements the two generic algebras the rest of the
// value layer is built on.
//
// Deferred-value resolution ([Resolve]) materializes a value that may
// contain deferred computations at any depth: slices resolve
// element-wise and string-keyed maps field-wise, concurrently, with
// results recombined by position rather than arrival order. Domain
// types (paths, blobs, artifacts, templates, targets) mark themselves
// terminal via the [Leaf] interface so this package needs no imports
// from the packages above it.
//
// The mutation algebra ([Mutation], [Fold]) folds layered argument
// objects into one mapping: set, unset, set-if-unset, and the
// template-joining append/prepend. Folding is left-to-right across
// layers and is how a target's environment is composed from a base
// definition plus call-site overrides.
package value
