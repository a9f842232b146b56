// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"context"
	"fmt"

	"github.com/stratum-build/stratum/lib/object"
)

// Data is the canonical serialized form of a template. Artifact
// components are lowered to their content ids. Templates are not
// standalone objects; Data is embedded in the payloads of symlinks,
// targets, processes, and downloads.
type Data struct {
	Components []ComponentData `cbor:"components,omitempty"`
}

// ComponentData is the serialized form of a single component. Exactly
// one field is populated.
type ComponentData struct {
	Literal     string     `cbor:"literal,omitempty"`
	Artifact    *object.Id `cbor:"artifact,omitempty"`
	Placeholder string     `cbor:"placeholder,omitempty"`
}

// Data lowers the template to its serialized form, forcing the
// content id of every artifact component.
func (t *Template) Data(ctx context.Context, s object.Store) (Data, error) {
	var data Data
	for _, c := range t.components {
		switch c := c.(type) {
		case Literal:
			data.Components = append(data.Components, ComponentData{Literal: string(c)})
		case ArtifactRef:
			id, err := c.Artifact.ID(ctx, s)
			if err != nil {
				return Data{}, fmt.Errorf("lowering template artifact component: %w", err)
			}
			data.Components = append(data.Components, ComponentData{Artifact: &id})
		case Placeholder:
			data.Components = append(data.Components, ComponentData{Placeholder: c.Name})
		}
	}
	return data, nil
}

// FromData raises serialized template data back to a template.
// artifactFromId constructs an artifact handle from a stored id
// (lib/artifact provides one). The component sequence is re-coalesced
// on the way in, so the construction invariant holds even for
// payloads written by other implementations.
func FromData(data Data, artifactFromId func(object.Id) (Artifact, error)) (*Template, error) {
	var b builder
	for _, c := range data.Components {
		switch {
		case c.Artifact != nil:
			a, err := artifactFromId(*c.Artifact)
			if err != nil {
				return nil, fmt.Errorf("raising template artifact component %s: %w", c.Artifact, err)
			}
			b.push(ArtifactRef{Artifact: a})
		case c.Placeholder != "":
			b.push(Placeholder{Name: c.Placeholder})
		case c.Literal != "":
			b.push(Literal(c.Literal))
		default:
			return nil, fmt.Errorf("empty template component in payload: %w", ErrInvalid)
		}
	}
	return &Template{components: b.components}, nil
}
