// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"fmt"
	"strings"
)

// Id is the content address of an object: its kind plus the
// kind-domain hash of its canonical payload. The text form is
// "<kind>-<64 hex chars>", e.g. "dir-4f2a…".
type Id struct {
	kind Kind
	hash Hash
}

// NewId constructs an Id from a kind and hash.
func NewId(kind Kind, hash Hash) Id {
	return Id{kind: kind, hash: hash}
}

// ComputeId derives the id of a canonical payload. This is the single
// addressing rule shared by every store implementation.
func ComputeId(kind Kind, payload []byte) Id {
	return Id{kind: kind, hash: HashPayload(kind, payload)}
}

// Kind returns the object kind encoded in the id.
func (id Id) Kind() Kind { return id.kind }

// Hash returns the payload hash.
func (id Id) Hash() Hash { return id.hash }

// IsZero reports whether the id is the zero value (no kind, no hash).
func (id Id) IsZero() bool { return id == Id{} }

// String returns the canonical text form "<kind>-<hex>".
func (id Id) String() string {
	return id.kind.String() + "-" + FormatHash(id.hash)
}

// ParseId parses the canonical text form of an id.
func ParseId(s string) (Id, error) {
	prefix, hexPart, found := strings.Cut(s, "-")
	if !found {
		return Id{}, fmt.Errorf("object id %q: missing kind prefix", s)
	}
	kind, err := ParseKind(prefix)
	if err != nil {
		return Id{}, fmt.Errorf("object id %q: %w", s, err)
	}
	hash, err := ParseHash(hexPart)
	if err != nil {
		return Id{}, fmt.Errorf("object id %q: %w", s, err)
	}
	return Id{kind: kind, hash: hash}, nil
}

// MarshalText implements encoding.TextMarshaler. Ids serialize as
// their canonical text form in CBOR and JSON payloads.
func (id Id) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero object id")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Id) UnmarshalText(text []byte) error {
	parsed, err := ParseId(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
