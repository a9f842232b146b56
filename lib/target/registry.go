// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateDefinition is the sentinel for two definitions
// registering under the same (module reference, name) key.
var ErrDuplicateDefinition = errors.New("duplicate target definition")

// Definition is the callback body of a registered target definition.
// It receives the engine and the target's resolved positional
// arguments.
type Definition func(ctx context.Context, e Engine, args []any) (any, error)

// Registry maps (encoded module reference, name) to definition
// callbacks. It is populated once while modules initialize and read
// for the rest of the process, but is passed around as an explicit
// handle so tests can build isolated instances.
type Registry struct {
	mu          sync.Mutex
	definitions map[registryKey]Definition
}

type registryKey struct {
	definition string
	name       string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[registryKey]Definition)}
}

// Register records a definition callback. Registering the same key
// twice is an error wrapping [ErrDuplicateDefinition].
func (r *Registry) Register(definition, name string, fn Definition) error {
	if fn == nil {
		return fmt.Errorf("definition %s %q: nil callback: %w", definition, name, ErrConstruction)
	}
	key := registryKey{definition: definition, name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[key]; exists {
		return fmt.Errorf("definition %s %q: %w", definition, name, ErrDuplicateDefinition)
	}
	r.definitions[key] = fn
	return nil
}

// Lookup returns the callback registered under the key.
func (r *Registry) Lookup(definition, name string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.definitions[registryKey{definition: definition, name: name}]
	return fn, ok
}

// Names returns the registered names under one module reference, in
// sorted order.
func (r *Registry) Names(definition string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for key := range r.definitions {
		if key.definition == definition {
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names
}
