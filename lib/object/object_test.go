// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"context"
	"errors"
	"testing"
)

func TestIdRoundTrip(t *testing.T) {
	id := ComputeId(KindBlob, []byte("hello"))
	parsed, err := ParseId(id.String())
	if err != nil {
		t.Fatalf("ParseId(%q): %v", id.String(), err)
	}
	if parsed != id {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, id)
	}
}

func TestParseIdRejectsMalformed(t *testing.T) {
	for _, input := range []string{
		"",
		"noprefix",
		"bogus-0000000000000000000000000000000000000000000000000000000000000000",
		"blb-tooshort",
		"blb-zz" + FormatHash(Hash{})[2:],
	} {
		if _, err := ParseId(input); err == nil {
			t.Errorf("ParseId(%q) succeeded, want error", input)
		}
	}
}

func TestDomainSeparation(t *testing.T) {
	payload := []byte("same bytes")
	blobId := ComputeId(KindBlob, payload)
	fileId := ComputeId(KindFile, payload)
	if blobId.Hash() == fileId.Hash() {
		t.Error("blob and file hashes collide for identical payload")
	}
}

func TestHashPayloadDeterministic(t *testing.T) {
	a := HashPayload(KindDirectory, []byte("x"))
	b := HashPayload(KindDirectory, []byte("x"))
	if a != b {
		t.Error("HashPayload is not deterministic")
	}
}

func TestKindParse(t *testing.T) {
	for _, k := range kinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if parsed != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), parsed, k)
		}
	}
	if _, err := ParseKind("nope"); err == nil {
		t.Error("ParseKind(nope) succeeded, want error")
	}
}

func TestCellEnsureIdMemoizes(t *testing.T) {
	ctx := context.Background()
	obj := "payload"
	cell := CellFromObject(&obj)

	if _, ok := cell.CachedId(); ok {
		t.Fatal("fresh cell already has an id")
	}

	calls := 0
	lower := func(ctx context.Context, o *string) (Id, error) {
		calls++
		return ComputeId(KindBlob, []byte(*o)), nil
	}

	first, err := cell.EnsureId(ctx, lower)
	if err != nil {
		t.Fatalf("EnsureId: %v", err)
	}
	second, err := cell.EnsureId(ctx, lower)
	if err != nil {
		t.Fatalf("EnsureId (second): %v", err)
	}
	if first != second {
		t.Errorf("EnsureId returned different ids: %v vs %v", first, second)
	}
	if calls != 1 {
		t.Errorf("lower called %d times, want 1", calls)
	}
}

func TestCellEnsureObjectMemoizes(t *testing.T) {
	ctx := context.Background()
	id := ComputeId(KindBlob, []byte("x"))
	cell := CellFromId[string](id)

	calls := 0
	raise := func(ctx context.Context, got Id) (*string, error) {
		calls++
		if got != id {
			t.Errorf("raise received id %v, want %v", got, id)
		}
		s := "loaded"
		return &s, nil
	}

	for i := 0; i < 2; i++ {
		obj, err := cell.EnsureObject(ctx, raise)
		if err != nil {
			t.Fatalf("EnsureObject: %v", err)
		}
		if *obj != "loaded" {
			t.Errorf("EnsureObject = %q, want %q", *obj, "loaded")
		}
	}
	if calls != 1 {
		t.Errorf("raise called %d times, want 1", calls)
	}
}

func TestCellErrorIsNotMemoized(t *testing.T) {
	ctx := context.Background()
	obj := "payload"
	cell := CellFromObject(&obj)

	boom := errors.New("store unavailable")
	fail := true
	lower := func(ctx context.Context, o *string) (Id, error) {
		if fail {
			return Id{}, boom
		}
		return ComputeId(KindBlob, []byte(*o)), nil
	}

	if _, err := cell.EnsureId(ctx, lower); !errors.Is(err, boom) {
		t.Fatalf("EnsureId error = %v, want %v", err, boom)
	}

	// A later attempt after the store recovers must succeed.
	fail = false
	if _, err := cell.EnsureId(ctx, lower); err != nil {
		t.Fatalf("EnsureId after recovery: %v", err)
	}
}
