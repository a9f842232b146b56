// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package path

import "testing"

func TestNormalization(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "."},
		{".", "."},
		{"a", "a"},
		{"a/b/c", "a/b/c"},
		{"a//b", "a/b"},
		{"a/./b", "a/b"},
		{"a/../b", "b"},
		{"a/b/..", "a"},
		{"../a", "../a"},
		{"a/../..", ".."},
		{"../../a/b", "../../a/b"},
		{"/leading/slash", "leading/slash"},
		{"trailing/", "trailing"},
	}
	for _, test := range tests {
		got := Parse(test.input).String()
		if got != test.want {
			t.Errorf("Parse(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		base, other, want string
	}{
		{"a/b", "c", "a/b/c"},
		{"a/b", "../c", "a/c"},
		{"a", "../../c", "../c"},
		{"a/b", ".", "a/b"},
		{"", "a", "a"},
	}
	for _, test := range tests {
		got := Parse(test.base).Join(Parse(test.other)).String()
		if got != test.want {
			t.Errorf("Join(%q, %q) = %q, want %q", test.base, test.other, got, test.want)
		}
	}
}

func TestParentAndPush(t *testing.T) {
	p := Parse("a/b")
	if got := p.Parent().String(); got != "a" {
		t.Errorf("Parent(a/b) = %q, want %q", got, "a")
	}
	if got := p.Push("c").String(); got != "a/b/c" {
		t.Errorf("Push(a/b, c) = %q, want %q", got, "a/b/c")
	}
	// Parent past the root accumulates.
	if got := Parse("").Parent().String(); got != ".." {
		t.Errorf("Parent(.) = %q, want %q", got, "..")
	}
}

func TestIsExternal(t *testing.T) {
	if Parse("a/b").IsExternal() {
		t.Error("a/b reported external")
	}
	if !Parse("../a").IsExternal() {
		t.Error("../a not reported external")
	}
	if !Parse("a/../..").IsExternal() {
		t.Error("a/../.. not reported external")
	}
}

func TestComponentEquality(t *testing.T) {
	parent := Component{Parent: true}
	if !parent.Equal(Component{Parent: true}) {
		t.Error("parent components unequal")
	}
	if parent.Equal(Component{Name: ".."}) {
		t.Error("parent equals normal component named ..")
	}
	// Normal segments compare case-sensitively.
	if (Component{Name: "README"}).Equal(Component{Name: "readme"}) {
		t.Error("normal component comparison is case-insensitive")
	}
}

func TestImmutability(t *testing.T) {
	base := Parse("a/b")
	_ = base.Push("c")
	_ = base.Parent()
	_ = base.Join(Parse("../x"))
	if got := base.String(); got != "a/b" {
		t.Errorf("base mutated by derived operations: %q", got)
	}
}
