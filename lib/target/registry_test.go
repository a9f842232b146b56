// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stratum-build/stratum/lib/target"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := target.NewRegistry()
	fn := func(ctx context.Context, e target.Engine, args []any) (any, error) {
		return "built", nil
	}
	if err := r.Register("stratum://6162/build.st", "compile", fn); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := r.Lookup("stratum://6162/build.st", "compile")
	if !ok {
		t.Fatal("registered definition not found")
	}
	result, err := got(context.Background(), nil, nil)
	if err != nil || result != "built" {
		t.Errorf("callback = %v, %v", result, err)
	}

	if _, ok := r.Lookup("stratum://6162/build.st", "other"); ok {
		t.Error("unregistered name found")
	}
	if _, ok := r.Lookup("stratum://6364/build.st", "compile"); ok {
		t.Error("same name under other module found")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := target.NewRegistry()
	fn := func(ctx context.Context, e target.Engine, args []any) (any, error) { return nil, nil }
	if err := r.Register("stratum://6162/build.st", "compile", fn); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register("stratum://6162/build.st", "compile", fn)
	if !errors.Is(err, target.ErrDuplicateDefinition) {
		t.Errorf("duplicate Register error = %v, want ErrDuplicateDefinition", err)
	}
	// Distinct names under the same module are fine.
	if err := r.Register("stratum://6162/build.st", "link", fn); err != nil {
		t.Errorf("Register(link): %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	r := target.NewRegistry()
	fn := func(ctx context.Context, e target.Engine, args []any) (any, error) { return nil, nil }
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register("stratum://6162/build.st", name, fn); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	got := r.Names("stratum://6162/build.st")
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}
