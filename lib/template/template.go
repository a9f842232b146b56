// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
)

// ErrInvalid is the sentinel for malformed templates: an input of an
// unrecognized shape offered to [New] or [Join], or a component
// sequence that violates a consumer's constraints (such as a symlink
// target with more than two components).
var ErrInvalid = errors.New("invalid template")

// Artifact is an artifact handle usable as a template component. The
// concrete implementations live in lib/artifact; the interface keeps
// this package free of an import cycle (symlink targets are
// templates, and symlinks are artifacts).
type Artifact interface {
	ID(ctx context.Context, s object.Store) (object.Id, error)
	Kind() object.Kind
}

// Component is one element of a template: a literal string, an
// artifact reference, or a named placeholder. The union is closed;
// consumers switch exhaustively over the three concrete types.
type Component interface {
	isComponent()
}

// Literal is a literal string component. The construction invariant
// guarantees a template never contains an empty Literal and never
// contains two adjacent Literals.
type Literal string

func (Literal) isComponent() {}

// ArtifactRef is a component referencing an artifact.
type ArtifactRef struct {
	Artifact Artifact
}

func (ArtifactRef) isComponent() {}

// Placeholder is a named substitution point, filled in by the
// execution engine (e.g. the output path of a build step).
type Placeholder struct {
	Name string
}

func (Placeholder) isComponent() {}

// Template is an ordered sequence of components representing a
// composed value such as a command line, an environment variable, or
// a symlink target. Templates are immutable once constructed.
type Template struct {
	components []Component
}

// New flattens arbitrarily nested parts into a canonical component
// sequence. Accepted parts: nil (skipped), string, [Literal],
// [Placeholder], [ArtifactRef], [path.Path], *Template, slices of
// any accepted part, and any [Artifact]. Adjacent literal strings are
// coalesced and empty strings dropped, so the result never holds two
// consecutive string components.
func New(parts ...any) (*Template, error) {
	var b builder
	for _, part := range parts {
		if err := b.add(part); err != nil {
			return nil, err
		}
	}
	return &Template{components: b.components}, nil
}

// Empty returns the template with no components.
func Empty() *Template {
	return &Template{}
}

// Components returns a copy of the component sequence.
func (t *Template) Components() []Component {
	return append([]Component(nil), t.components...)
}

// IsEmpty reports whether the template has no components.
func (t *Template) IsEmpty() bool {
	return len(t.components) == 0
}

// ValueLeaf marks Template as a terminal value for deferred-value
// resolution (lib/value).
func (*Template) ValueLeaf() {}

// builder accumulates components, maintaining the coalescing
// invariant on every push.
type builder struct {
	components []Component
}

func (b *builder) push(c Component) {
	if lit, ok := c.(Literal); ok {
		if lit == "" {
			return
		}
		if len(b.components) > 0 {
			if prev, ok := b.components[len(b.components)-1].(Literal); ok {
				b.components[len(b.components)-1] = prev + lit
				return
			}
		}
	}
	b.components = append(b.components, c)
}

func (b *builder) pushAll(t *Template) {
	for _, c := range t.components {
		b.push(c)
	}
}

func (b *builder) add(part any) error {
	switch part := part.(type) {
	case nil:
		return nil
	case string:
		b.push(Literal(part))
	case Literal:
		b.push(part)
	case Placeholder:
		if part.Name == "" {
			return fmt.Errorf("placeholder with empty name: %w", ErrInvalid)
		}
		b.push(part)
	case ArtifactRef:
		if part.Artifact == nil {
			return fmt.Errorf("artifact component with nil artifact: %w", ErrInvalid)
		}
		b.push(part)
	case path.Path:
		b.push(Literal(part.String()))
	case *Template:
		b.pushAll(part)
	case []any:
		for _, nested := range part {
			if err := b.add(nested); err != nil {
				return err
			}
		}
	case []string:
		for _, nested := range part {
			b.push(Literal(nested))
		}
	case Artifact:
		// After the concrete cases: any remaining artifact handle.
		b.push(ArtifactRef{Artifact: part})
	default:
		return fmt.Errorf("template part of type %T: %w", part, ErrInvalid)
	}
	return nil
}
