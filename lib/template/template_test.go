// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"context"
	"errors"
	"testing"

	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
)

// fakeArtifact implements Artifact with a fixed id, standing in for
// lib/artifact handles.
type fakeArtifact struct {
	id object.Id
}

func (f fakeArtifact) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return f.id, nil
}

func (f fakeArtifact) Kind() object.Kind { return f.id.Kind() }

func newFakeArtifact(seed string) fakeArtifact {
	return fakeArtifact{id: object.ComputeId(object.KindFile, []byte(seed))}
}

func TestNewCoalescesLiterals(t *testing.T) {
	tmpl, err := New("a", "", "b", []any{"c", []any{"d"}}, "e")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	components := tmpl.Components()
	if len(components) != 1 {
		t.Fatalf("got %d components, want 1: %v", len(components), components)
	}
	if components[0] != Literal("abcde") {
		t.Errorf("component = %v, want %q", components[0], "abcde")
	}
}

func TestNewNeverAdjacentStrings(t *testing.T) {
	art := newFakeArtifact("x")
	tmpl, err := New("", "pre", art, "", "mid", "dle", nil, art, "post", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	components := tmpl.Components()
	for i := 1; i < len(components); i++ {
		_, prevIsLiteral := components[i-1].(Literal)
		_, thisIsLiteral := components[i].(Literal)
		if prevIsLiteral && thisIsLiteral {
			t.Fatalf("adjacent literal components at %d: %v", i, components)
		}
	}
	for _, c := range components {
		if lit, ok := c.(Literal); ok && lit == "" {
			t.Fatal("empty literal component survived construction")
		}
	}
	if len(components) != 5 {
		t.Errorf("got %d components, want 5: %v", len(components), components)
	}
}

func TestNewThreeComponents(t *testing.T) {
	art := newFakeArtifact("artifactA")
	tmpl, err := New("prefix-", art, "-suffix")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	components := tmpl.Components()
	if len(components) != 3 {
		t.Fatalf("got %d components, want 3", len(components))
	}
	if components[0] != Literal("prefix-") || components[2] != Literal("-suffix") {
		t.Errorf("literal components wrong: %v", components)
	}
	if ref, ok := components[1].(ArtifactRef); !ok || ref.Artifact != Artifact(art) {
		t.Errorf("middle component = %v, want artifact ref", components[1])
	}
}

func TestNewAcceptsPathsAndNesting(t *testing.T) {
	tmpl, err := New("root/", path.Parse("a/b"), []string{"-x", "-y"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	components := tmpl.Components()
	if len(components) != 1 || components[0] != Literal("root/a/b-x-y") {
		t.Errorf("components = %v", components)
	}
}

func TestNewRejectsUnknownShapes(t *testing.T) {
	if _, err := New(struct{ X int }{1}); !errors.Is(err, ErrInvalid) {
		t.Errorf("New(struct) error = %v, want ErrInvalid", err)
	}
	if _, err := New(Placeholder{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("New(empty placeholder) error = %v, want ErrInvalid", err)
	}
}

func TestJoinSplicesSeparator(t *testing.T) {
	artA := newFakeArtifact("A")
	artB := newFakeArtifact("B")

	first, err := New("prefix-", artA, "-suffix")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New("prefix-", artB, "-suffix")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	joined, err := Join(":", first, second)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	// Member boundaries are preserved: two 3-component templates plus
	// the separator give 7 components.
	components := joined.Components()
	if len(components) != 7 {
		t.Fatalf("got %d components, want 7: %v", len(components), components)
	}
	if components[3] != Literal(":") {
		t.Errorf("separator component = %v, want %q", components[3], ":")
	}
	if components[0] != Literal("prefix-") || components[6] != Literal("-suffix") {
		t.Errorf("outer literals wrong: %v", components)
	}
}

func TestJoinSkipsEmptyMembers(t *testing.T) {
	joined, err := Join(":", "a", "", Empty(), "b")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	components := joined.Components()
	if len(components) != 3 {
		t.Fatalf("got %d components, want 3: %v", len(components), components)
	}
	if components[0] != Literal("a") || components[1] != Literal(":") || components[2] != Literal("b") {
		t.Errorf("components = %v, want [a : b]", components)
	}
}

func TestJoinAllEmpty(t *testing.T) {
	joined, err := Join(":", "", nil, Empty())
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !joined.IsEmpty() {
		t.Errorf("joined = %v, want empty", joined.Components())
	}
}

func TestDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	art := newFakeArtifact("round")

	tmpl, err := New("bin/", art, Placeholder{Name: "output"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := tmpl.Data(ctx, nil)
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(data.Components) != 3 {
		t.Fatalf("data has %d components, want 3", len(data.Components))
	}

	raised, err := FromData(data, func(id object.Id) (Artifact, error) {
		return fakeArtifact{id: id}, nil
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	components := raised.Components()
	if len(components) != 3 {
		t.Fatalf("raised has %d components, want 3", len(components))
	}
	if components[0] != Literal("bin/") {
		t.Errorf("component 0 = %v", components[0])
	}
	ref, ok := components[1].(ArtifactRef)
	if !ok {
		t.Fatalf("component 1 = %T, want ArtifactRef", components[1])
	}
	gotId, err := ref.Artifact.ID(ctx, nil)
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if gotId != art.id {
		t.Errorf("raised artifact id = %v, want %v", gotId, art.id)
	}
	if components[2] != (Placeholder{Name: "output"}) {
		t.Errorf("component 2 = %v", components[2])
	}
}
