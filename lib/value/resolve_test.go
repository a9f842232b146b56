// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/template"
)

func TestResolvePrimitivesPassThrough(t *testing.T) {
	ctx := context.Background()
	for _, v := range []any{nil, true, 42, int64(-7), uint64(9), 3.5, "hello", []byte("raw")} {
		got, err := Resolve(ctx, v)
		if err != nil {
			t.Fatalf("Resolve(%v): %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("Resolve(%v) = %v", v, got)
		}
	}
}

func TestResolveLeafPassThrough(t *testing.T) {
	ctx := context.Background()
	p := path.Parse("a/b")
	got, err := Resolve(ctx, p)
	if err != nil {
		t.Fatalf("Resolve(path): %v", err)
	}
	if !got.(path.Path).Equal(p) {
		t.Errorf("Resolve(path) = %v, want %v", got, p)
	}

	tmpl := template.Empty()
	gotTmpl, err := Resolve(ctx, tmpl)
	if err != nil {
		t.Fatalf("Resolve(template): %v", err)
	}
	if gotTmpl != any(tmpl) {
		t.Error("Resolve(template) returned a different handle")
	}
}

func TestResolveDeferred(t *testing.T) {
	ctx := context.Background()
	deferred := Deferred(func(ctx context.Context) (any, error) {
		return "computed", nil
	})
	got, err := Resolve(ctx, deferred)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "computed" {
		t.Errorf("Resolve = %v, want %q", got, "computed")
	}
}

func TestResolveDeferredReturningDeferred(t *testing.T) {
	ctx := context.Background()
	inner := Deferred(func(ctx context.Context) (any, error) {
		return 7, nil
	})
	outer := Deferred(func(ctx context.Context) (any, error) {
		return inner, nil
	})
	got, err := Resolve(ctx, outer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != 7 {
		t.Errorf("Resolve = %v, want 7", got)
	}
}

func TestResolveSliceAndMap(t *testing.T) {
	ctx := context.Background()
	deferred := Deferred(func(ctx context.Context) (any, error) {
		return "late", nil
	})
	input := map[string]any{
		"list":   []any{1, deferred, []any{deferred}},
		"scalar": deferred,
		"plain":  "early",
	}
	got, err := Resolve(ctx, input)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]any{
		"list":   []any{1, "late", []any{"late"}},
		"scalar": "late",
		"plain":  "early",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %#v, want %#v", got, want)
	}
}

func TestResolveDeferredError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("deferred failure")
	deferred := Deferred(func(ctx context.Context) (any, error) {
		return nil, boom
	})
	if _, err := Resolve(ctx, []any{1, deferred}); !errors.Is(err, boom) {
		t.Errorf("Resolve error = %v, want %v", err, boom)
	}
}

func TestResolveUnknownShape(t *testing.T) {
	ctx := context.Background()
	if _, err := Resolve(ctx, struct{ X int }{}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Resolve(struct) error = %v, want ErrInvalidValue", err)
	}
	if _, err := Resolve(ctx, make(chan int)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Resolve(chan) error = %v, want ErrInvalidValue", err)
	}
}

func TestResolveMutationPayload(t *testing.T) {
	ctx := context.Background()
	deferred := Deferred(func(ctx context.Context) (any, error) {
		return "payload", nil
	})
	got, err := Resolve(ctx, Set(deferred))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(*Mutation)
	if !ok {
		t.Fatalf("Resolve = %T, want *Mutation", got)
	}
	if m.Value() != "payload" {
		t.Errorf("mutation value = %v, want %q", m.Value(), "payload")
	}
}
