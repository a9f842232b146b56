// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package module_test

import (
	"testing"

	"github.com/stratum-build/stratum/lib/module"
)

func TestParseManifestWithComments(t *testing.T) {
	m, err := module.ParseManifest([]byte(`{
		// The package name.
		"name": "hello",
		"dependencies": {
			"lib": {
				"url": "https://example.com/lib.tar.gz",
				"checksum": "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			},
			"sibling": {"path": "../sibling"},
		},
	}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Name != "hello" {
		t.Errorf("name = %q", m.Name)
	}
	lib := m.Dependencies["lib"]
	if lib.URL != "https://example.com/lib.tar.gz" || lib.Checksum.IsZero() {
		t.Errorf("lib dependency = %+v", lib)
	}
	if m.Dependencies["sibling"].Path != "../sibling" {
		t.Errorf("sibling dependency = %+v", m.Dependencies["sibling"])
	}
}

func TestParseManifestRequiresName(t *testing.T) {
	if _, err := module.ParseManifest([]byte(`{}`)); err == nil {
		t.Error("nameless manifest accepted")
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	packageId, lockId := storedIds(t)
	lock := &module.Lockfile{Packages: map[string]module.LockEntry{
		"lib": {Package: packageId, Lock: lockId},
	}}
	encoded, err := lock.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := module.ParseLockfile(encoded)
	if err != nil {
		t.Fatalf("ParseLockfile: %v", err)
	}
	entry := parsed.Packages["lib"]
	if entry.Package != packageId || entry.Lock != lockId {
		t.Errorf("entry = %+v", entry)
	}
}
