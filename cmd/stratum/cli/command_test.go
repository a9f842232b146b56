// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestExecuteDispatchesSubcommand(t *testing.T) {
	var ran []string
	root := &Command{
		Name: "tool",
		Subcommands: []*Command{
			{
				Name: "store",
				Subcommands: []*Command{
					{
						Name: "import",
						Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
							ran = args
							return nil
						},
					},
				},
			},
		},
	}

	err := root.Execute(context.Background(), []string{"store", "import", "a", "b"}, testLogger())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ran) != 2 || ran[0] != "a" || ran[1] != "b" {
		t.Errorf("args = %v", ran)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	root := &Command{
		Name: "tool",
		Subcommands: []*Command{
			{Name: "import"},
			{Name: "export"},
		},
	}

	err := root.Execute(context.Background(), []string{"improt"}, testLogger())
	if err == nil || !strings.Contains(err.Error(), `"import"`) {
		t.Errorf("error = %v, want import suggestion", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var verbose *bool
	var got bool
	command := &Command{
		Name: "tool",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("tool", pflag.ContinueOnError)
			verbose = flagSet.Bool("verbose", false, "")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			got = *verbose
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--verbose"}, testLogger()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !got {
		t.Error("verbose flag not parsed")
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("tool", pflag.ContinueOnError)
	flagSet.String("checksum", "", "")
	flagSet.Bool("unpack", false, "")

	if got := suggestFlag([]string{"--checksun", "x"}, flagSet); got != "--checksum" {
		t.Errorf("suggestFlag = %q", got)
	}
	if got := suggestFlag([]string{"--zzzzzzzz"}, flagSet); got != "" {
		t.Errorf("suggestFlag for distant input = %q, want none", got)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"import", "improt", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
