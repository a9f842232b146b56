// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package module

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/object"
)

// ManifestName is the manifest file name at a package root.
const ManifestName = "stratum.json"

// LockfileName is the lockfile name at a package root.
const LockfileName = "stratum.lock.json"

// Manifest describes a package as its author wrote it: a name plus
// dependency sources by import specifier. Manifests are JSONC, so
// authors may comment them.
type Manifest struct {
	Name         string                `json:"name"`
	Description  string                `json:"description,omitempty"`
	Dependencies map[string]Dependency `json:"dependencies,omitempty"`
}

// Dependency names where a dependency comes from. URL dependencies
// should carry a checksum so resolution needs no unsafe flag.
type Dependency struct {
	URL      string            `json:"url,omitempty"`
	Path     string            `json:"path,omitempty"`
	Checksum checksum.Checksum `json:"checksum,omitempty"`
}

// Lockfile pins every dependency specifier of a manifest to stored
// content. Unlike the manifest it is machine-written strict JSON.
type Lockfile struct {
	Packages map[string]LockEntry `json:"packages"`
}

// LockEntry is one pinned dependency.
type LockEntry struct {
	Package object.Id `json:"package"`
	Lock    object.Id `json:"lock"`
}

// ParseManifest parses JSONC manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest missing name")
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseLockfile parses lockfile bytes.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var l Lockfile
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}
	return &l, nil
}

// LoadLockfile reads and parses a lockfile.
func LoadLockfile(filePath string) (*Lockfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile: %w", err)
	}
	return ParseLockfile(data)
}

// Encode renders the lockfile in its canonical on-disk form.
func (l *Lockfile) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding lockfile: %w", err)
	}
	return append(data, '\n'), nil
}
