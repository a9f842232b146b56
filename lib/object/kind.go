// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import "fmt"

// Kind identifies the type of an addressable object. The kind is part
// of an object's [Id] and selects the hash domain for its payload, so
// payloads of different kinds can never collide.
type Kind uint8

const (
	// KindBlob is a byte sequence (leaf or branch of sized children).
	KindBlob Kind = iota + 1
	// KindDirectory maps names to artifact ids.
	KindDirectory
	// KindFile is blob contents plus an executable flag and references.
	KindFile
	// KindSymlink is a template-valued link target.
	KindSymlink
	// KindTarget is a named, callable build definition.
	KindTarget
	// KindProcess is the lower-level analogue of a target, without
	// package or name metadata.
	KindProcess
	// KindDownload is a single-URL fetch descriptor.
	KindDownload
	// KindPackage is a package root directory plus its dependencies.
	KindPackage
)

// kinds lists every valid kind, in id-prefix order. Used by parsing
// and by the hash domain key table.
var kinds = []Kind{
	KindBlob, KindDirectory, KindFile, KindSymlink,
	KindTarget, KindProcess, KindDownload, KindPackage,
}

// String returns the kind name used as the id prefix ("blb" in
// "blb-4f2a…"). Three-letter prefixes keep full ids at a fixed,
// scannable width in logs and CLI output.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blb"
	case KindDirectory:
		return "dir"
	case KindFile:
		return "fil"
	case KindSymlink:
		return "sym"
	case KindTarget:
		return "tgt"
	case KindProcess:
		return "prc"
	case KindDownload:
		return "dld"
	case KindPackage:
		return "pkg"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// longName returns the spelled-out kind name used in hash domain keys
// and error messages.
func (k Kind) longName() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindTarget:
		return "target"
	case KindProcess:
		return "process"
	case KindDownload:
		return "download"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// ParseKind parses an id prefix into a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown object kind %q", name)
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return k >= KindBlob && k <= KindPackage
}
