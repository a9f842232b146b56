// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package target implements build-step values: targets, processes,
// and downloads, plus the registry that maps a definition back to its
// callback.
//
// A Target is a named build definition: an execution host, an
// executable template, environment and positional-argument templates,
// and safety flags. Targets are composed from layered option sets. A
// later call site extends a target's argument list through Invoke
// without mutating the original, which is what makes definitions
// behave like curried functions. A Process is the same shape without
// definition metadata; a Download describes a single URL fetch.
//
// The value layer only carries the network and host-path flags. The
// execution engine honors them solely when a checksum pins the result
// or the unsafe flag was set explicitly, and rejects the step
// otherwise.
package target
