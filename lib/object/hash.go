// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of an object's canonical payload.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same payload bytes produce different
// hashes for different object kinds, preventing cross-kind collisions.
type domainKey [32]byte

// domainKeys holds one key per kind, indexed by Kind. The byte values
// are the ASCII encoding of "stratum.object.<kind>", zero-padded to 32
// bytes. These are fixed protocol constants; changing them
// invalidates every existing id. Readable ASCII makes the keys
// inspectable in hex dumps without sacrificing any cryptographic
// property (BLAKE3 keyed mode treats the key as opaque).
var domainKeys [KindPackage + 1]domainKey

func init() {
	for _, k := range kinds {
		name := "stratum.object." + k.longName()
		if len(name) > 32 {
			panic("object: domain key name exceeds 32 bytes: " + name)
		}
		copy(domainKeys[k][:], name)
	}
}

// HashPayload computes the kind-domain BLAKE3 keyed hash of a
// canonical object payload. Every store implementation must derive
// ids this way so all stores agree on addressing.
func HashPayload(kind Kind, payload []byte) Hash {
	if !kind.Valid() {
		panic("object: HashPayload called with invalid kind")
	}
	return keyedHash(domainKeys[kind], payload)
}

// FormatHash returns the hex-encoded string representation of a hash.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing object hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("object hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// keyedHash computes a BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("object: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
