// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"context"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
)

// Engine is the execution boundary consumed by the value layer. It
// stores objects, executes build steps, and resolves package-relative
// includes. Implementations must enforce the gating contract: a
// target, process, or download asking for network access or host-path
// mounts is honored only when it carries a checksum or has the unsafe
// flag set, and is rejected otherwise.
//
// Engine failures are opaque to callers of this package: they are
// propagated unchanged and never retried here.
type Engine interface {
	object.Store

	// Build executes a target and returns its resulting value.
	Build(ctx context.Context, t *Target) (any, error)

	// Run executes a bare process and returns its resulting value.
	Run(ctx context.Context, p *Process) (any, error)

	// Download fetches a URL, optionally unpacking an archive into a
	// directory, and returns the resulting artifact.
	Download(ctx context.Context, d *Download) (artifact.Artifact, error)

	// Include resolves a path relative to the package of the referring
	// module (given by its encoded reference).
	Include(ctx context.Context, referrer string, relative path.Path) (artifact.Artifact, error)
}
