// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package object defines content addressing for the stratum value
// layer: object kinds, ids, the hash rule that derives an id from a
// canonical payload, the two-state handle cell, and the store
// boundary interface.
//
// Every addressable object (blob, directory, file, symlink, target,
// process, download, package) is identified by an [Id]: its [Kind]
// plus the BLAKE3 keyed hash of its canonical CBOR payload. Keyed
// hashing with a per-kind ASCII domain key means payloads of
// different kinds can never share an id, even if their bytes match.
//
// [Cell] implements the id/object duality every handle is built on:
// a handle holds either a content id or a materialized in-memory
// object, and converts between the two lazily and at most once. A
// freshly constructed value defers hashing and storing until its id
// is actually requested; a value loaded by reference defers fetching
// its payload until it is inspected.
//
// [Store] is the only interface this layer requires of the external
// engine for persistence. Implementations live in lib/engine.
package object
