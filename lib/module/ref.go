// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package module implements content-addressed module references and
// the package objects they point into.
//
// A module reference identifies one source file. It is carried as a
// synthetic URL of the form
//
//	stratum://<hex(utf8(json(reference)))>/<display-path>
//
// where the host segment is authoritative and the path segment exists
// only so humans reading diagnostics can tell references apart.
// Decoding uses the host alone, so renaming a file inside a package
// changes nothing about where imports resolve to.
package module

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stratum-build/stratum/lib/object"
)

// Scheme is the URL scheme of encoded module references.
const Scheme = "stratum"

// ErrInvalidRef reports a reference that is malformed or fails to
// round-trip through its encoded form.
var ErrInvalidRef = fmt.Errorf("invalid module reference")

// RefKind discriminates the three ways a source file can be
// identified.
type RefKind string

const (
	// RefDocument is a loose file open in an editor, not yet part of
	// any stored package. It carries the package path and file path as
	// plain strings.
	RefDocument RefKind = "document"
	// RefLibrary is a file built into the tool itself, identified by
	// file path alone.
	RefLibrary RefKind = "library"
	// RefNormal is the common case: a file inside a content-addressed
	// package, pinned by package id and lock id.
	RefNormal RefKind = "normal"
)

// Ref identifies a source file. Exactly the fields relevant to its
// kind are set; Validate reports which.
type Ref struct {
	Kind RefKind `json:"kind"`

	// PackagePath locates a document reference's package on the host
	// filesystem. Document refs only.
	PackagePath string `json:"packagePath,omitempty"`

	// FilePath locates the file within its package (or library tree).
	// All kinds.
	FilePath string `json:"filePath"`

	// PackageId and LockId pin a normal reference to stored content.
	PackageId *object.Id `json:"packageId,omitempty"`
	LockId    *object.Id `json:"lockId,omitempty"`
}

// Validate checks that the reference carries exactly the fields its
// kind requires.
func (r Ref) Validate() error {
	if r.FilePath == "" {
		return fmt.Errorf("missing file path: %w", ErrInvalidRef)
	}
	switch r.Kind {
	case RefDocument:
		if r.PackagePath == "" {
			return fmt.Errorf("document reference without package path: %w", ErrInvalidRef)
		}
		if r.PackageId != nil || r.LockId != nil {
			return fmt.Errorf("document reference with package id: %w", ErrInvalidRef)
		}
	case RefLibrary:
		if r.PackagePath != "" || r.PackageId != nil || r.LockId != nil {
			return fmt.Errorf("library reference with package fields: %w", ErrInvalidRef)
		}
	case RefNormal:
		if r.PackageId == nil || r.LockId == nil {
			return fmt.Errorf("normal reference without package and lock ids: %w", ErrInvalidRef)
		}
		if r.PackagePath != "" {
			return fmt.Errorf("normal reference with package path: %w", ErrInvalidRef)
		}
	default:
		return fmt.Errorf("unknown reference kind %q: %w", r.Kind, ErrInvalidRef)
	}
	return nil
}

// Encode serializes the reference into its synthetic URL form.
func (r Ref) Encode() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	record, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding module reference: %w", err)
	}
	u := url.URL{
		Scheme: Scheme,
		Host:   hex.EncodeToString(record),
		Path:   "/" + strings.TrimPrefix(r.FilePath, "/"),
	}
	return u.String(), nil
}

// Decode parses a synthetic reference URL back into a Ref. Only the
// host segment is consulted.
func Decode(rawURL string) (Ref, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Ref{}, fmt.Errorf("parsing module reference URL: %w", err)
	}
	if u.Scheme != Scheme {
		return Ref{}, fmt.Errorf("module reference scheme %q, want %q: %w", u.Scheme, Scheme, ErrInvalidRef)
	}
	record, err := hex.DecodeString(u.Host)
	if err != nil {
		return Ref{}, fmt.Errorf("decoding module reference host: %w", err)
	}
	var r Ref
	if err := json.Unmarshal(record, &r); err != nil {
		return Ref{}, fmt.Errorf("decoding module reference record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Ref{}, err
	}
	return r, nil
}
