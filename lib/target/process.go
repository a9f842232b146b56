// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"context"
	"fmt"

	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/template"
)

// Process is the lower-level analogue of a target: the same execution
// fields without definition metadata. Definition and Name in the
// option layers are ignored.
type Process struct {
	cell *object.Cell[targetObject]
}

// NewProcess composes option layers into a process. A missing host or
// executable is an error wrapping [ErrConstruction].
func NewProcess(ctx context.Context, s object.Store, layers ...Options) (*Process, error) {
	obj, err := compose(ctx, layers...)
	if err != nil {
		return nil, err
	}
	obj.definition = ""
	obj.name = ""
	return &Process{cell: object.CellFromObject(obj)}, nil
}

// ProcessFromId wraps an already-stored process id.
func ProcessFromId(id object.Id) (*Process, error) {
	if id.Kind() != object.KindProcess {
		return nil, fmt.Errorf("id %s is not a process", id)
	}
	return &Process{cell: object.CellFromId[targetObject](id)}, nil
}

// Process derives a process from the target, dropping its definition
// metadata. Used when handing a target to an executor that only deals
// in processes.
func (t *Target) Process(ctx context.Context, s object.Store) (*Process, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	next := *obj
	next.definition = ""
	next.name = ""
	return &Process{cell: object.CellFromObject(&next)}, nil
}

func (p *Process) ValueLeaf() {}

// ID returns the process's content id, storing it on first call.
func (p *Process) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return p.cell.EnsureId(ctx, func(ctx context.Context, obj *targetObject) (object.Id, error) {
		data, err := lowerFields(ctx, s, obj)
		if err != nil {
			return object.Id{}, err
		}
		payload, err := codec.Marshal(data)
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding process: %w", err)
		}
		id, err := s.Store(ctx, object.KindProcess, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing process: %w", err)
		}
		return id, nil
	})
}

// Host returns the execution host identifier.
func (p *Process) Host(ctx context.Context, s object.Store) (string, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return "", err
	}
	return obj.host, nil
}

// Executable returns the executable template.
func (p *Process) Executable(ctx context.Context, s object.Store) (*template.Template, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return obj.executable, nil
}

// Env returns a copy of the environment mapping.
func (p *Process) Env(ctx context.Context, s object.Store) (map[string]*template.Template, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	env := make(map[string]*template.Template, len(obj.env))
	for name, tmpl := range obj.env {
		env[name] = tmpl
	}
	return env, nil
}

// Args returns a copy of the positional-argument list.
func (p *Process) Args(ctx context.Context, s object.Store) ([]*template.Template, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	args := make([]*template.Template, len(obj.args))
	copy(args, obj.args)
	return args, nil
}

// Checksum returns the process's checksum, zero when absent.
func (p *Process) Checksum(ctx context.Context, s object.Store) (checksum.Checksum, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return checksum.Checksum{}, err
	}
	return obj.checksum, nil
}

// Unsafe reports whether the unsafe flag is set.
func (p *Process) Unsafe(ctx context.Context, s object.Store) (bool, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.unsafe, nil
}

// Network reports whether the process requests network access.
func (p *Process) Network(ctx context.Context, s object.Store) (bool, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.network, nil
}

// HostPaths returns the host filesystem paths the process requests to
// mount.
func (p *Process) HostPaths(ctx context.Context, s object.Store) ([]string, error) {
	obj, err := p.object(ctx, s)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(obj.hostPaths))
	copy(paths, obj.hostPaths)
	return paths, nil
}

func (p *Process) object(ctx context.Context, s object.Store) (*targetObject, error) {
	return p.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*targetObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var data targetData
		if err := codec.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding process %s: %w", id, err)
		}
		obj, err := raiseFields(data)
		if err != nil {
			return nil, fmt.Errorf("decoding process %s: %w", id, err)
		}
		return obj, nil
	})
}
