// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"fmt"

	"github.com/stratum-build/stratum/lib/template"
)

// MutationKind identifies the edit a mutation descriptor performs
// when a layered argument object is folded.
type MutationKind uint8

const (
	// MutationSet overwrites the key unconditionally.
	MutationSet MutationKind = iota + 1
	// MutationUnset removes the key.
	MutationUnset
	// MutationSetIfUnset writes only if the key is absent.
	MutationSetIfUnset
	// MutationAppend joins the new value onto the end of the existing
	// template-like value.
	MutationAppend
	// MutationPrepend joins the new value onto the front of the
	// existing template-like value.
	MutationPrepend
)

// String returns the mutation kind name used in error messages.
func (k MutationKind) String() string {
	switch k {
	case MutationSet:
		return "set"
	case MutationUnset:
		return "unset"
	case MutationSetIfUnset:
		return "set_if_unset"
	case MutationAppend:
		return "append"
	case MutationPrepend:
		return "prepend"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Mutation is a declarative edit applied during [Fold]. A bare
// (non-Mutation) value in a layer is an implicit [Set].
type Mutation struct {
	kind      MutationKind
	value     any
	separator any
}

// Set returns a mutation that overwrites the key with v.
func Set(v any) *Mutation {
	return &Mutation{kind: MutationSet, value: v}
}

// Unset returns a mutation that removes the key.
func Unset() *Mutation {
	return &Mutation{kind: MutationUnset}
}

// SetIfUnset returns a mutation that writes v only when the key is
// absent from the accumulator.
func SetIfUnset(v any) *Mutation {
	return &Mutation{kind: MutationSetIfUnset, value: v}
}

// Append returns a mutation that template-joins v onto the end of the
// existing value. separator may be nil for no separator.
func Append(v, separator any) *Mutation {
	return &Mutation{kind: MutationAppend, value: v, separator: separator}
}

// Prepend returns a mutation that template-joins v onto the front of
// the existing value. separator may be nil for no separator.
func Prepend(v, separator any) *Mutation {
	return &Mutation{kind: MutationPrepend, value: v, separator: separator}
}

// Kind returns the mutation's kind.
func (m *Mutation) Kind() MutationKind { return m.kind }

// Value returns the mutation's payload (nil for Unset).
func (m *Mutation) Value() any { return m.value }

// resolve materializes any deferred positions in the payload and
// separator, returning a new descriptor.
func (m *Mutation) resolve(ctx context.Context) (*Mutation, error) {
	resolvedValue, err := Resolve(ctx, m.value)
	if err != nil {
		return nil, err
	}
	resolvedSeparator, err := Resolve(ctx, m.separator)
	if err != nil {
		return nil, err
	}
	return &Mutation{kind: m.kind, value: resolvedValue, separator: resolvedSeparator}, nil
}

// Fold applies layers left-to-right over an empty accumulator and
// returns the folded mapping. Each layer is resolved (deferred
// positions run) before its descriptors are applied. Within a layer
// each key carries exactly one descriptor, so application order
// across keys does not matter; across layers the left-to-right order
// is the contract.
//
// This is the single mechanism by which a target's environment is
// composed from a base definition plus override layers.
func Fold(ctx context.Context, layers ...map[string]any) (map[string]any, error) {
	accumulator := make(map[string]any)
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		resolved, err := Resolve(ctx, layer)
		if err != nil {
			return nil, err
		}
		for key, v := range resolved.(map[string]any) {
			if err := applyMutation(accumulator, key, v); err != nil {
				return nil, err
			}
		}
	}
	return accumulator, nil
}

func applyMutation(accumulator map[string]any, key string, v any) error {
	m, ok := v.(*Mutation)
	if !ok {
		// Bare value: implicit set.
		accumulator[key] = v
		return nil
	}

	switch m.kind {
	case MutationSet:
		accumulator[key] = m.value

	case MutationUnset:
		delete(accumulator, key)

	case MutationSetIfUnset:
		if _, exists := accumulator[key]; !exists {
			accumulator[key] = m.value
		}

	case MutationAppend, MutationPrepend:
		existing, exists := accumulator[key]
		if !exists {
			existing = template.Empty()
		}
		var joined *template.Template
		var err error
		if m.kind == MutationAppend {
			joined, err = template.Join(m.separator, existing, m.value)
		} else {
			joined, err = template.Join(m.separator, m.value, existing)
		}
		if err != nil {
			return fmt.Errorf("%s %q: %w", m.kind, key, err)
		}
		accumulator[key] = joined

	default:
		return fmt.Errorf("mutation for %q has kind %s: %w", key, m.kind, ErrInvalidValue)
	}
	return nil
}
