// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package path implements the relative path algebra used throughout
// the value layer: an ordered sequence of "parent" (..) and "normal"
// (named segment) components, normalized at construction.
//
// Normalization drops empty segments and ".", and lets a parent
// component cancel the most recently pushed normal segment. Parents
// that cannot cancel anything accumulate at the front, so every
// normalized path is a (possibly zero) run of parents followed by a
// run of normal segments. Component equality is case-sensitive for
// normal segments; two parent components are always equal.
//
// These are value-layer paths (directory entry lookups, symlink
// targets, template fragments), not host filesystem paths: the
// separator is always "/" regardless of platform.
package path

import (
	"errors"
	"strings"
)

// Separator is the path component separator.
const Separator = "/"

// ErrInvalid is the sentinel for a path that is malformed for its
// context, such as a directory entry key that is empty or escapes
// the directory being built.
var ErrInvalid = errors.New("invalid path")

// Component is a single path component: either a parent ("..") or a
// named normal segment.
type Component struct {
	// Parent is true for a ".." component; Name is empty.
	Parent bool
	// Name is the segment name for a normal component.
	Name string
}

// Equal reports whether two components are equal. Parent components
// are always equal to each other; normal components compare
// case-sensitively by name.
func (c Component) Equal(other Component) bool {
	if c.Parent || other.Parent {
		return c.Parent == other.Parent
	}
	return c.Name == other.Name
}

// Path is a normalized sequence of components: parents leading
// normals, never interleaved. The zero value is the empty path.
type Path struct {
	parents  int
	segments []string
}

// New builds a path from raw segments, normalizing as it goes. A
// segment may itself contain separators ("a/b/c" pushes three
// components).
func New(segments ...string) Path {
	var p Path
	for _, segment := range segments {
		p = p.join(segment)
	}
	return p
}

// Parse builds a path from its string form. Leading separators are
// dropped: value-layer paths are always relative to some artifact, so
// "/bin/sh" and "bin/sh" denote the same components.
func Parse(s string) Path {
	return New(s)
}

// join pushes the components of raw onto a copy of p, normalizing.
func (p Path) join(raw string) Path {
	result := Path{parents: p.parents, segments: append([]string(nil), p.segments...)}
	for _, segment := range strings.Split(raw, Separator) {
		switch segment {
		case "", ".":
			// Dropped.
		case "..":
			if len(result.segments) > 0 {
				result.segments = result.segments[:len(result.segments)-1]
			} else {
				result.parents++
			}
		default:
			result.segments = append(result.segments, segment)
		}
	}
	return result
}

// Join appends other to p and returns the normalized result. Parents
// in other cancel trailing segments of p.
func (p Path) Join(other Path) Path {
	result := Path{parents: p.parents, segments: append([]string(nil), p.segments...)}
	for i := 0; i < other.parents; i++ {
		if len(result.segments) > 0 {
			result.segments = result.segments[:len(result.segments)-1]
		} else {
			result.parents++
		}
	}
	result.segments = append(result.segments, other.segments...)
	return result
}

// Push returns p with one normal segment appended.
func (p Path) Push(name string) Path {
	return p.join(name)
}

// Parent returns p with a parent component appended (the path of p's
// containing directory).
func (p Path) Parent() Path {
	return p.join("..")
}

// Components returns the normalized component sequence.
func (p Path) Components() []Component {
	components := make([]Component, 0, p.parents+len(p.segments))
	for i := 0; i < p.parents; i++ {
		components = append(components, Component{Parent: true})
	}
	for _, segment := range p.segments {
		components = append(components, Component{Name: segment})
	}
	return components
}

// Segments returns the normal segments. Valid only together with
// [Path.Parents]; callers that cannot handle leading parents should
// check IsExternal first.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Parents returns the number of leading parent components.
func (p Path) Parents() int { return p.parents }

// IsEmpty reports whether the path has no components at all.
func (p Path) IsEmpty() bool {
	return p.parents == 0 && len(p.segments) == 0
}

// IsExternal reports whether the path escapes its starting point
// (has leading parent components after normalization).
func (p Path) IsExternal() bool { return p.parents > 0 }

// Equal reports whether two paths have equal component sequences.
func (p Path) Equal(other Path) bool {
	if p.parents != other.parents || len(p.segments) != len(other.segments) {
		return false
	}
	for i, segment := range p.segments {
		if segment != other.segments[i] {
			return false
		}
	}
	return true
}

// ValueLeaf marks Path as a terminal value for deferred-value
// resolution (lib/value): a path resolves to itself.
func (Path) ValueLeaf() {}

// String returns the canonical string form. The empty path renders as
// ".".
func (p Path) String() string {
	if p.IsEmpty() {
		return "."
	}
	parts := make([]string, 0, p.parents+len(p.segments))
	for i := 0; i < p.parents; i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, p.segments...)
	return strings.Join(parts, Separator)
}
