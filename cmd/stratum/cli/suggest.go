// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance caps how different a suggestion may be from
// what the user typed. Distances beyond this produce no suggestion.
const maxSuggestionDistance = 3

// suggestCommand returns the name of the closest subcommand to the
// given input, or "" if nothing is close enough.
func suggestCommand(input string, commands []*Command) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, command := range commands {
		distance := levenshtein(input, command.Name)
		if distance < bestDistance {
			best = command.Name
			bestDistance = distance
		}
	}
	return best
}

// suggestFlag extracts the unknown flag from args and returns the
// closest defined flag (with leading dashes), or "" if nothing is
// close enough.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var unknown string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			name := strings.TrimPrefix(arg, "--")
			if index := strings.IndexByte(name, '='); index >= 0 {
				name = name[:index]
			}
			if flagSet.Lookup(name) == nil {
				unknown = name
				break
			}
		}
	}
	if unknown == "" {
		return ""
	}

	best := ""
	bestDistance := maxSuggestionDistance + 1
	flagSet.VisitAll(func(flag *pflag.Flag) {
		distance := levenshtein(unknown, flag.Name)
		if distance < bestDistance {
			best = flag.Name
			bestDistance = distance
		}
	})
	if best == "" {
		return ""
	}
	return "--" + best
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, min(current[j-1]+1, previous[j-1]+cost))
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}
