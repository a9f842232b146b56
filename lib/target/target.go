// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/template"
	"github.com/stratum-build/stratum/lib/value"
)

// ErrConstruction is the sentinel for a target or process missing a
// required field.
var ErrConstruction = errors.New("invalid build step construction")

// Options is one layer of target fields. Layers are composed
// left-to-right by [New]: the first layer supplying a singleton field
// (host, executable, definition, name, checksum) wins, boolean flags
// combine with or, host paths and positional arguments concatenate,
// and environments fold through the mutation algebra.
//
// Executable and the elements of Args accept anything
// [template.New] accepts, possibly deferred. Env values may be
// template-like values or [value.Mutation] descriptors.
type Options struct {
	Host       string
	Executable any
	Definition string
	Name       string
	Env        map[string]any
	Args       []any
	Checksum   checksum.Checksum
	Unsafe     bool
	Network    bool
	HostPaths  []string
}

// Target is a handle on a build-step definition.
type Target struct {
	cell *object.Cell[targetObject]
}

type targetObject struct {
	host       string
	executable *template.Template
	definition string
	name       string
	env        map[string]*template.Template
	args       []*template.Template
	checksum   checksum.Checksum
	unsafe     bool
	network    bool
	hostPaths  []string
}

type targetData struct {
	Host       string                   `cbor:"host"`
	Executable template.Data            `cbor:"executable"`
	Definition string                   `cbor:"definition,omitempty"`
	Name       string                   `cbor:"name,omitempty"`
	Env        map[string]template.Data `cbor:"env,omitempty"`
	Args       []template.Data          `cbor:"args,omitempty"`
	Checksum   string                   `cbor:"checksum,omitempty"`
	Unsafe     bool                     `cbor:"unsafe,omitempty"`
	Network    bool                     `cbor:"network,omitempty"`
	HostPaths  []string                 `cbor:"hostPaths,omitempty"`
}

// New composes any number of option layers into a target. A missing
// host or executable is an error wrapping [ErrConstruction].
func New(ctx context.Context, s object.Store, layers ...Options) (*Target, error) {
	obj, err := compose(ctx, layers...)
	if err != nil {
		return nil, err
	}
	return &Target{cell: object.CellFromObject(obj)}, nil
}

// FromId wraps an already-stored target id.
func FromId(id object.Id) (*Target, error) {
	if id.Kind() != object.KindTarget {
		return nil, fmt.Errorf("id %s is not a target", id)
	}
	return &Target{cell: object.CellFromId[targetObject](id)}, nil
}

// compose implements the layer algebra shared by targets and
// processes.
func compose(ctx context.Context, layers ...Options) (*targetObject, error) {
	var obj targetObject
	var executable any
	envLayers := make([]map[string]any, 0, len(layers))
	for _, layer := range layers {
		if obj.host == "" {
			obj.host = layer.Host
		}
		if executable == nil {
			executable = layer.Executable
		}
		if obj.definition == "" {
			obj.definition = layer.Definition
		}
		if obj.name == "" {
			obj.name = layer.Name
		}
		if obj.checksum.IsZero() {
			obj.checksum = layer.Checksum
		}
		obj.unsafe = obj.unsafe || layer.Unsafe
		obj.network = obj.network || layer.Network
		obj.hostPaths = append(obj.hostPaths, layer.HostPaths...)
		if layer.Env != nil {
			envLayers = append(envLayers, layer.Env)
		}
		for i, arg := range layer.Args {
			tmpl, err := resolveTemplate(ctx, arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", len(obj.args)+i, err)
			}
			obj.args = append(obj.args, tmpl)
		}
	}

	if obj.host == "" {
		return nil, fmt.Errorf("missing host: %w", ErrConstruction)
	}
	if executable == nil {
		return nil, fmt.Errorf("missing executable: %w", ErrConstruction)
	}
	tmpl, err := resolveTemplate(ctx, executable)
	if err != nil {
		return nil, fmt.Errorf("executable: %w", err)
	}
	if tmpl.IsEmpty() {
		return nil, fmt.Errorf("missing executable: %w", ErrConstruction)
	}
	obj.executable = tmpl

	folded, err := value.Fold(ctx, envLayers...)
	if err != nil {
		return nil, err
	}
	obj.env = make(map[string]*template.Template, len(folded))
	for name, v := range folded {
		tmpl, err := template.New(v)
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", name, err)
		}
		obj.env[name] = tmpl
	}
	return &obj, nil
}

func resolveTemplate(ctx context.Context, v any) (*template.Template, error) {
	resolved, err := value.Resolve(ctx, v)
	if err != nil {
		return nil, err
	}
	return template.New(resolved)
}

// Invoke curries the target: the result shares every base field and
// extends the positional-argument list with the call's arguments. The
// original target is unchanged.
func (t *Target) Invoke(ctx context.Context, s object.Store, args ...any) (*Target, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	next := *obj
	next.args = make([]*template.Template, len(obj.args), len(obj.args)+len(args))
	copy(next.args, obj.args)
	for i, arg := range args {
		tmpl, err := resolveTemplate(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", len(obj.args)+i, err)
		}
		next.args = append(next.args, tmpl)
	}
	return &Target{cell: object.CellFromObject(&next)}, nil
}

func (t *Target) ValueLeaf() {}

// ID returns the target's content id, storing it and every referenced
// artifact on first call.
func (t *Target) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return t.cell.EnsureId(ctx, func(ctx context.Context, obj *targetObject) (object.Id, error) {
		data, err := lowerFields(ctx, s, obj)
		if err != nil {
			return object.Id{}, err
		}
		payload, err := codec.Marshal(data)
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding target: %w", err)
		}
		id, err := s.Store(ctx, object.KindTarget, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing target: %w", err)
		}
		return id, nil
	})
}

func lowerFields(ctx context.Context, s object.Store, obj *targetObject) (targetData, error) {
	data := targetData{
		Host:       obj.host,
		Definition: obj.definition,
		Name:       obj.name,
		Unsafe:     obj.unsafe,
		Network:    obj.network,
		HostPaths:  obj.hostPaths,
	}
	if !obj.checksum.IsZero() {
		data.Checksum = obj.checksum.String()
	}
	var err error
	if data.Executable, err = obj.executable.Data(ctx, s); err != nil {
		return targetData{}, fmt.Errorf("lowering executable: %w", err)
	}
	if len(obj.env) > 0 {
		data.Env = make(map[string]template.Data, len(obj.env))
		for name, tmpl := range obj.env {
			if data.Env[name], err = tmpl.Data(ctx, s); err != nil {
				return targetData{}, fmt.Errorf("lowering environment %s: %w", name, err)
			}
		}
	}
	for i, tmpl := range obj.args {
		argData, err := tmpl.Data(ctx, s)
		if err != nil {
			return targetData{}, fmt.Errorf("lowering argument %d: %w", i, err)
		}
		data.Args = append(data.Args, argData)
	}
	return data, nil
}

func raiseFields(data targetData) (*targetObject, error) {
	obj := targetObject{
		host:       data.Host,
		definition: data.Definition,
		name:       data.Name,
		unsafe:     data.Unsafe,
		network:    data.Network,
		hostPaths:  data.HostPaths,
	}
	if data.Checksum != "" {
		sum, err := checksum.Parse(data.Checksum)
		if err != nil {
			return nil, err
		}
		obj.checksum = sum
	}
	var err error
	if obj.executable, err = raiseTemplate(data.Executable); err != nil {
		return nil, err
	}
	obj.env = make(map[string]*template.Template, len(data.Env))
	for name, tmplData := range data.Env {
		if obj.env[name], err = raiseTemplate(tmplData); err != nil {
			return nil, err
		}
	}
	for _, argData := range data.Args {
		tmpl, err := raiseTemplate(argData)
		if err != nil {
			return nil, err
		}
		obj.args = append(obj.args, tmpl)
	}
	return &obj, nil
}

func raiseTemplate(data template.Data) (*template.Template, error) {
	return template.FromData(data, func(id object.Id) (template.Artifact, error) {
		return artifact.FromId(id)
	})
}

// Host returns the execution host identifier.
func (t *Target) Host(ctx context.Context, s object.Store) (string, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return "", err
	}
	return obj.host, nil
}

// Executable returns the executable template.
func (t *Target) Executable(ctx context.Context, s object.Store) (*template.Template, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	return obj.executable, nil
}

// Definition returns the encoded module reference of the defining
// module, or empty for anonymous targets.
func (t *Target) Definition(ctx context.Context, s object.Store) (string, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return "", err
	}
	return obj.definition, nil
}

// Name returns the target's definition name.
func (t *Target) Name(ctx context.Context, s object.Store) (string, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return "", err
	}
	return obj.name, nil
}

// Env returns a copy of the environment mapping.
func (t *Target) Env(ctx context.Context, s object.Store) (map[string]*template.Template, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	env := make(map[string]*template.Template, len(obj.env))
	for name, tmpl := range obj.env {
		env[name] = tmpl
	}
	return env, nil
}

// EnvNames returns the environment variable names in sorted order.
func (t *Target) EnvNames(ctx context.Context, s object.Store) ([]string, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(obj.env))
	for name := range obj.env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Args returns a copy of the positional-argument list.
func (t *Target) Args(ctx context.Context, s object.Store) ([]*template.Template, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	args := make([]*template.Template, len(obj.args))
	copy(args, obj.args)
	return args, nil
}

// Checksum returns the target's checksum, zero when absent.
func (t *Target) Checksum(ctx context.Context, s object.Store) (checksum.Checksum, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return checksum.Checksum{}, err
	}
	return obj.checksum, nil
}

// Unsafe reports whether the unsafe flag is set.
func (t *Target) Unsafe(ctx context.Context, s object.Store) (bool, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.unsafe, nil
}

// Network reports whether the target requests network access.
func (t *Target) Network(ctx context.Context, s object.Store) (bool, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.network, nil
}

// HostPaths returns the host filesystem paths the target requests to
// mount.
func (t *Target) HostPaths(ctx context.Context, s object.Store) ([]string, error) {
	obj, err := t.object(ctx, s)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(obj.hostPaths))
	copy(paths, obj.hostPaths)
	return paths, nil
}

func (t *Target) object(ctx context.Context, s object.Store) (*targetObject, error) {
	return t.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*targetObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var data targetData
		if err := codec.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding target %s: %w", id, err)
		}
		obj, err := raiseFields(data)
		if err != nil {
			return nil, fmt.Errorf("decoding target %s: %w", id, err)
		}
		return obj, nil
	})
}
