// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/stratum-build/stratum/lib/object"
)

// MemoryStore is an object.Store backed by a process-local map. It
// backs tests and ephemeral builds that never need to persist
// anything; the durable implementation is [FileStore].
type MemoryStore struct {
	mu       sync.RWMutex
	payloads map[object.Id][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: make(map[object.Id][]byte)}
}

// Store implements object.Store. Storing an existing payload is a
// no-op returning the same id.
func (s *MemoryStore) Store(ctx context.Context, kind object.Kind, payload []byte) (object.Id, error) {
	if !kind.Valid() {
		return object.Id{}, fmt.Errorf("storing object: invalid kind %d", kind)
	}
	id := object.ComputeId(kind, payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payloads[id]; !ok {
		s.payloads[id] = append([]byte(nil), payload...)
	}
	return id, nil
}

// Load implements object.Store.
func (s *MemoryStore) Load(ctx context.Context, id object.Id) ([]byte, error) {
	s.mu.RLock()
	payload, ok := s.payloads[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loading %s: %w", id, object.ErrNotFound)
	}
	return append([]byte(nil), payload...), nil
}

// Len returns the number of distinct objects held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}
