// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine implements the execution boundary of the value
// layer: object stores (in-memory and on-disk), build dispatch
// through the definition registry, downloads with checksum
// verification and archive unpacking, and import/export between host
// filesystem trees and artifacts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/module"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/target"
)

// ErrGated is the sentinel for a build step requesting network access
// or host-path mounts without a checksum or the unsafe flag.
var ErrGated = errors.New("unverified build step requests external access")

// Executor runs processes in sandboxes. The engine delegates to it
// for any target without a registered definition callback.
type Executor interface {
	Exec(ctx context.Context, p *target.Process) (any, error)
}

// Engine implements target.Engine on top of an object store, a
// definition registry, and an optional process executor.
type Engine struct {
	store    object.Store
	registry *target.Registry
	executor Executor
	client   *http.Client
	library  *artifact.Directory
	logger   *slog.Logger
}

// Options configure an Engine. Every field is optional.
type Options struct {
	// Registry holds definition callbacks consulted by Build. A nil
	// registry means every build falls through to the executor.
	Registry *target.Registry

	// Executor runs processes. Without one, Run and definition-less
	// builds fail.
	Executor Executor

	// Client performs downloads. Defaults to a client with a 5 minute
	// timeout.
	Client *http.Client

	// Library is the built-in module tree resolved against by library
	// references.
	Library *artifact.Directory

	Logger *slog.Logger
}

// New creates an engine over the given store.
func New(store object.Store, opts Options) *Engine {
	e := &Engine{
		store:    store,
		registry: opts.Registry,
		executor: opts.Executor,
		client:   opts.Client,
		library:  opts.Library,
		logger:   opts.Logger,
	}
	if e.registry == nil {
		e.registry = target.NewRegistry()
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: 5 * time.Minute}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Store implements object.Store by delegation.
func (e *Engine) Store(ctx context.Context, kind object.Kind, payload []byte) (object.Id, error) {
	return e.store.Store(ctx, kind, payload)
}

// Load implements object.Store by delegation.
func (e *Engine) Load(ctx context.Context, id object.Id) ([]byte, error) {
	return e.store.Load(ctx, id)
}

// Build executes a target. A target whose definition is registered
// runs its callback with the target's positional arguments; anything
// else is handed to the executor as a bare process.
func (e *Engine) Build(ctx context.Context, t *target.Target) (any, error) {
	if err := e.gateTarget(ctx, t); err != nil {
		return nil, err
	}
	definition, err := t.Definition(ctx, e.store)
	if err != nil {
		return nil, err
	}
	name, err := t.Name(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if definition != "" && name != "" {
		if fn, ok := e.registry.Lookup(definition, name); ok {
			tmplArgs, err := t.Args(ctx, e.store)
			if err != nil {
				return nil, err
			}
			args := make([]any, len(tmplArgs))
			for i, arg := range tmplArgs {
				args[i] = arg
			}
			e.logger.Debug("building via definition", "name", name)
			return fn(ctx, e, args)
		}
	}
	p, err := t.Process(ctx, e.store)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, p)
}

// Run executes a bare process through the executor.
func (e *Engine) Run(ctx context.Context, p *target.Process) (any, error) {
	if err := e.gateProcess(ctx, p); err != nil {
		return nil, err
	}
	return e.run(ctx, p)
}

func (e *Engine) run(ctx context.Context, p *target.Process) (any, error) {
	if e.executor == nil {
		return nil, fmt.Errorf("no process executor configured")
	}
	return e.executor.Exec(ctx, p)
}

// Download fetches a URL and returns the resulting artifact: a
// directory when unpacking, a file otherwise. A download without a
// checksum must carry the unsafe flag; a checksummed download fails
// when the fetched bytes do not match.
func (e *Engine) Download(ctx context.Context, d *target.Download) (artifact.Artifact, error) {
	sum, err := d.Checksum(ctx, e.store)
	if err != nil {
		return nil, err
	}
	unsafe, err := d.Unsafe(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() && !unsafe {
		return nil, fmt.Errorf("download without checksum: %w", ErrGated)
	}
	rawURL, err := d.URL(ctx, e.store)
	if err != nil {
		return nil, err
	}

	data, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !sum.IsZero() {
		if err := sum.Verify(data); err != nil {
			return nil, fmt.Errorf("download %s: %w", rawURL, err)
		}
	}

	unpack, err := d.Unpack(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if unpack {
		return unpackArchive(ctx, e.store, rawURL, data)
	}
	return artifact.NewFileFromBytes(data), nil
}

// Include resolves a path relative to the file of the referring
// module, inside whatever tree its reference kind points at.
func (e *Engine) Include(ctx context.Context, referrer string, relative path.Path) (artifact.Artifact, error) {
	ref, err := module.Decode(referrer)
	if err != nil {
		return nil, err
	}
	resolved := path.Parse(ref.FilePath).Parent().Join(relative)
	if resolved.IsExternal() {
		return nil, fmt.Errorf("include %q escapes the package root: %w", relative, artifact.ErrResolution)
	}

	switch ref.Kind {
	case module.RefNormal:
		pkg, err := module.PackageFromId(*ref.PackageId)
		if err != nil {
			return nil, err
		}
		root, err := pkg.Root(ctx, e.store)
		if err != nil {
			return nil, err
		}
		return root.Get(ctx, e.store, resolved)

	case module.RefDocument:
		hostPath := filepath.Join(ref.PackagePath, filepath.FromSlash(resolved.String()))
		return ImportTree(ctx, e.store, hostPath)

	case module.RefLibrary:
		if e.library == nil {
			return nil, fmt.Errorf("library include %q with no library tree configured", relative)
		}
		return e.library.Get(ctx, e.store, resolved)

	default:
		return nil, fmt.Errorf("include from %q reference", ref.Kind)
	}
}

func (e *Engine) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	response, err := e.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %s", rawURL, response.Status)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	e.logger.Debug("downloaded", "url", rawURL, "bytes", len(data))
	return data, nil
}

// gateTarget enforces the checksum/unsafe contract for targets.
func (e *Engine) gateTarget(ctx context.Context, t *target.Target) error {
	network, err := t.Network(ctx, e.store)
	if err != nil {
		return err
	}
	hostPaths, err := t.HostPaths(ctx, e.store)
	if err != nil {
		return err
	}
	sum, err := t.Checksum(ctx, e.store)
	if err != nil {
		return err
	}
	unsafe, err := t.Unsafe(ctx, e.store)
	if err != nil {
		return err
	}
	return gate(network, hostPaths, !sum.IsZero(), unsafe)
}

func (e *Engine) gateProcess(ctx context.Context, p *target.Process) error {
	network, err := p.Network(ctx, e.store)
	if err != nil {
		return err
	}
	hostPaths, err := p.HostPaths(ctx, e.store)
	if err != nil {
		return err
	}
	sum, err := p.Checksum(ctx, e.store)
	if err != nil {
		return err
	}
	unsafe, err := p.Unsafe(ctx, e.store)
	if err != nil {
		return err
	}
	return gate(network, hostPaths, !sum.IsZero(), unsafe)
}

func gate(network bool, hostPaths []string, checksummed, unsafe bool) error {
	if !network && len(hostPaths) == 0 {
		return nil
	}
	if checksummed || unsafe {
		return nil
	}
	if network {
		return fmt.Errorf("network access without checksum: %w", ErrGated)
	}
	return fmt.Errorf("host path mounts without checksum: %w", ErrGated)
}
