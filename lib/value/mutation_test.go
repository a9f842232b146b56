// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stratum-build/stratum/lib/template"
)

func templateLiterals(t *testing.T, v any) []template.Component {
	t.Helper()
	tmpl, ok := v.(*template.Template)
	if !ok {
		t.Fatalf("value is %T, want *template.Template", v)
	}
	return tmpl.Components()
}

func TestFoldBareValueIsImplicitSet(t *testing.T) {
	ctx := context.Background()
	folded, err := Fold(ctx, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if folded["k"] != "v" {
		t.Errorf("folded[k] = %v, want %q", folded["k"], "v")
	}
}

func TestFoldSetUnsetSetIfUnset(t *testing.T) {
	ctx := context.Background()
	folded, err := Fold(ctx,
		map[string]any{"a": Set(1), "b": Set(2), "c": Set(3)},
		map[string]any{"a": Unset(), "b": SetIfUnset(20), "d": SetIfUnset(40)},
	)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if _, exists := folded["a"]; exists {
		t.Error("unset key a survived the fold")
	}
	if folded["b"] != 2 {
		t.Errorf("folded[b] = %v, want 2 (set_if_unset must not overwrite)", folded["b"])
	}
	if folded["c"] != 3 || folded["d"] != 40 {
		t.Errorf("folded = %v", folded)
	}
}

func TestFoldAppendWithSeparator(t *testing.T) {
	ctx := context.Background()
	folded, err := Fold(ctx,
		map[string]any{"PATH": Set("/usr/bin")},
		map[string]any{"PATH": Append("/opt/bin", ":")},
	)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	components := templateLiterals(t, folded["PATH"])
	want := []template.Component{
		template.Literal("/usr/bin"),
		template.Literal(":"),
		template.Literal("/opt/bin"),
	}
	if !reflect.DeepEqual(components, want) {
		t.Errorf("PATH components = %v, want %v", components, want)
	}
}

func TestFoldPrepend(t *testing.T) {
	ctx := context.Background()
	folded, err := Fold(ctx,
		map[string]any{"PATH": Set("/usr/bin")},
		map[string]any{"PATH": Prepend("/opt/bin", ":")},
	)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	components := templateLiterals(t, folded["PATH"])
	if components[0] != template.Literal("/opt/bin") {
		t.Errorf("prepend put new value at %v", components)
	}
}

func TestFoldAppendToAbsentKey(t *testing.T) {
	// Absent keys default to the empty template; the separator is not
	// emitted when joining onto nothing.
	ctx := context.Background()
	folded, err := Fold(ctx, map[string]any{"FLAGS": Append("-O2", " ")})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	components := templateLiterals(t, folded["FLAGS"])
	want := []template.Component{template.Literal("-O2")}
	if !reflect.DeepEqual(components, want) {
		t.Errorf("FLAGS components = %v, want %v", components, want)
	}
}

func TestFoldAssociativeAcrossLayers(t *testing.T) {
	// Applying [set, append] then [append] equals applying
	// [set, append, append] in one fold.
	ctx := context.Background()

	split, err := Fold(ctx,
		map[string]any{"k": Set("1")},
		map[string]any{"k": Append("2", ":")},
	)
	if err != nil {
		t.Fatalf("Fold (first): %v", err)
	}
	split, err = Fold(ctx,
		map[string]any{"k": Set(split["k"])},
		map[string]any{"k": Append("3", ":")},
	)
	if err != nil {
		t.Fatalf("Fold (second): %v", err)
	}

	oneShot, err := Fold(ctx,
		map[string]any{"k": Set("1")},
		map[string]any{"k": Append("2", ":")},
		map[string]any{"k": Append("3", ":")},
	)
	if err != nil {
		t.Fatalf("Fold (one shot): %v", err)
	}

	splitComponents := templateLiterals(t, split["k"])
	oneShotComponents := templateLiterals(t, oneShot["k"])
	if !reflect.DeepEqual(splitComponents, oneShotComponents) {
		t.Errorf("split fold = %v, one-shot fold = %v", splitComponents, oneShotComponents)
	}
}

func TestFoldAppendRejectsNonTemplateExisting(t *testing.T) {
	ctx := context.Background()
	_, err := Fold(ctx,
		map[string]any{"k": Set(42)},
		map[string]any{"k": Append("x", nil)},
	)
	if !errors.Is(err, template.ErrInvalid) {
		t.Errorf("Fold error = %v, want template.ErrInvalid", err)
	}
}

func TestFoldResolvesDeferredPayloads(t *testing.T) {
	ctx := context.Background()
	deferred := Deferred(func(ctx context.Context) (any, error) {
		return "late", nil
	})
	folded, err := Fold(ctx, map[string]any{"k": Set(deferred)})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if folded["k"] != "late" {
		t.Errorf("folded[k] = %v, want %q", folded["k"], "late")
	}
}
