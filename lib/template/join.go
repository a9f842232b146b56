// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package template

// Join concatenates template-like parts with a separator spliced
// between non-empty members. Empty members are skipped entirely, so
// separators are never doubled and never lead or trail.
//
// Each member is flattened and coalesced on its own ([New]), but
// components are NOT merged across member/separator boundaries:
// joining two 3-component templates with a string separator yields 7
// components. This keeps member boundaries recoverable by the
// execution engine when it substitutes placeholders.
//
// The separator may be any shape accepted by [New]; a nil separator
// joins with nothing between members.
func Join(separator any, parts ...any) (*Template, error) {
	sep, err := New(separator)
	if err != nil {
		return nil, err
	}

	var components []Component
	joined := false
	for _, part := range parts {
		member, err := New(part)
		if err != nil {
			return nil, err
		}
		if member.IsEmpty() {
			continue
		}
		if joined {
			components = append(components, sep.components...)
		}
		components = append(components, member.components...)
		joined = true
	}
	return &Template{components: components}, nil
}
