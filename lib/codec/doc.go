// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the canonical CBOR encoding used for every
// stored object payload.
//
// Stratum addresses objects by hashing their encoded payload, so the
// encoding must be deterministic: the same logical object must encode
// to the same bytes on every machine and every run. Encoding uses
// Core Deterministic Encoding (RFC 8949 §4.2) via fxamacker/cbor:
// sorted map keys, smallest-width integers, no indefinite-length
// items. Decoding accepts standard CBOR and ignores unknown fields so
// older binaries can read payloads written by newer ones.
//
// This package depends on no other stratum packages.
package codec
