// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum implements the checksum type carried by targets
// and downloads: an algorithm name plus a 32-byte digest, with the
// text form "<algorithm>:<hex>". A present checksum is what entitles
// a build step to network access; verification happens at the
// store/exec boundary.
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names the digest function of a checksum.
type Algorithm string

const (
	// SHA256 is the conventional choice for published release
	// artifacts, whose upstream checksums are almost always SHA-256.
	SHA256 Algorithm = "sha256"
	// BLAKE3 matches the hash used for object addressing.
	BLAKE3 Algorithm = "blake3"
)

// Size is the digest size in bytes. Both supported algorithms
// produce 32-byte digests.
const Size = 32

// Checksum is an algorithm plus its digest. The zero value is "no
// checksum".
type Checksum struct {
	algorithm Algorithm
	sum       [Size]byte
}

// Sum computes the checksum of data under the given algorithm.
func Sum(algorithm Algorithm, data []byte) (Checksum, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return Checksum{}, err
	}
	hasher.Write(data)
	return fromDigest(algorithm, hasher.Sum(nil))
}

// SumReader computes the checksum of everything readable from r,
// streaming so arbitrarily large inputs need no buffering.
func SumReader(algorithm Algorithm, r io.Reader) (Checksum, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return Checksum{}, err
	}
	if _, err := io.Copy(hasher, r); err != nil {
		return Checksum{}, fmt.Errorf("hashing stream: %w", err)
	}
	return fromDigest(algorithm, hasher.Sum(nil))
}

// SumFile computes the checksum of a file's contents.
func SumFile(algorithm Algorithm, filePath string) (Checksum, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Checksum{}, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()
	return SumReader(algorithm, f)
}

// Parse parses the "<algorithm>:<hex>" text form.
func Parse(s string) (Checksum, error) {
	name, hexPart, found := strings.Cut(s, ":")
	if !found {
		return Checksum{}, fmt.Errorf("checksum %q: missing algorithm prefix", s)
	}
	algorithm := Algorithm(name)
	switch algorithm {
	case SHA256, BLAKE3:
	default:
		return Checksum{}, fmt.Errorf("checksum %q: unknown algorithm %q", s, name)
	}
	digest, err := hex.DecodeString(hexPart)
	if err != nil {
		return Checksum{}, fmt.Errorf("checksum %q: %w", s, err)
	}
	return fromDigest(algorithm, digest)
}

// Algorithm returns the checksum's algorithm.
func (c Checksum) Algorithm() Algorithm { return c.algorithm }

// IsZero reports whether the checksum is absent.
func (c Checksum) IsZero() bool { return c.algorithm == "" }

// String returns the "<algorithm>:<hex>" text form.
func (c Checksum) String() string {
	return string(c.algorithm) + ":" + hex.EncodeToString(c.sum[:])
}

// MarshalText implements encoding.TextMarshaler. The zero checksum
// marshals as empty text.
func (c Checksum) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is
// the zero checksum.
func (c *Checksum) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Checksum{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Verify checks data against the checksum, returning a descriptive
// error on mismatch.
func (c Checksum) Verify(data []byte) error {
	actual, err := Sum(c.algorithm, data)
	if err != nil {
		return err
	}
	if !bytes.Equal(actual.sum[:], c.sum[:]) {
		return fmt.Errorf("checksum mismatch: got %s, want %s", actual, c)
	}
	return nil
}

func newHasher(algorithm Algorithm) (interface {
	io.Writer
	Sum([]byte) []byte
}, error) {
	switch algorithm {
	case SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown checksum algorithm %q", algorithm)
	}
}

func fromDigest(algorithm Algorithm, digest []byte) (Checksum, error) {
	if len(digest) != Size {
		return Checksum{}, fmt.Errorf("%s digest is %d bytes, want %d", algorithm, len(digest), Size)
	}
	var c Checksum
	c.algorithm = algorithm
	copy(c.sum[:], digest)
	return c, nil
}
