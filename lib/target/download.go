// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/codec"
	"github.com/stratum-build/stratum/lib/object"
)

// Download describes a single-URL fetch. The engine honors it only
// when a checksum pins the result or the unsafe flag is set.
type Download struct {
	cell *object.Cell[downloadObject]
}

// DownloadOptions are the optional download fields.
type DownloadOptions struct {
	// Unpack asks the engine to unpack the fetched archive into a
	// directory instead of yielding a single file.
	Unpack bool

	Checksum checksum.Checksum
	Unsafe   bool
}

type downloadObject struct {
	url      string
	unpack   bool
	checksum checksum.Checksum
	unsafe   bool
}

type downloadData struct {
	URL      string `cbor:"url"`
	Unpack   bool   `cbor:"unpack,omitempty"`
	Checksum string `cbor:"checksum,omitempty"`
	Unsafe   bool   `cbor:"unsafe,omitempty"`
}

// NewDownload describes fetching rawURL.
func NewDownload(rawURL string, opts DownloadOptions) (*Download, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("download URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("download URL %q is not absolute: %w", rawURL, ErrConstruction)
	}
	return &Download{cell: object.CellFromObject(&downloadObject{
		url:      rawURL,
		unpack:   opts.Unpack,
		checksum: opts.Checksum,
		unsafe:   opts.Unsafe,
	})}, nil
}

// DownloadFromId wraps an already-stored download id.
func DownloadFromId(id object.Id) (*Download, error) {
	if id.Kind() != object.KindDownload {
		return nil, fmt.Errorf("id %s is not a download", id)
	}
	return &Download{cell: object.CellFromId[downloadObject](id)}, nil
}

func (d *Download) ValueLeaf() {}

// ID returns the download's content id, storing it on first call.
func (d *Download) ID(ctx context.Context, s object.Store) (object.Id, error) {
	return d.cell.EnsureId(ctx, func(ctx context.Context, obj *downloadObject) (object.Id, error) {
		data := downloadData{URL: obj.url, Unpack: obj.unpack, Unsafe: obj.unsafe}
		if !obj.checksum.IsZero() {
			data.Checksum = obj.checksum.String()
		}
		payload, err := codec.Marshal(data)
		if err != nil {
			return object.Id{}, fmt.Errorf("encoding download: %w", err)
		}
		id, err := s.Store(ctx, object.KindDownload, payload)
		if err != nil {
			return object.Id{}, fmt.Errorf("storing download: %w", err)
		}
		return id, nil
	})
}

// URL returns the download URL.
func (d *Download) URL(ctx context.Context, s object.Store) (string, error) {
	obj, err := d.object(ctx, s)
	if err != nil {
		return "", err
	}
	return obj.url, nil
}

// Unpack reports whether the fetched archive should be unpacked.
func (d *Download) Unpack(ctx context.Context, s object.Store) (bool, error) {
	obj, err := d.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.unpack, nil
}

// Checksum returns the download's checksum, zero when absent.
func (d *Download) Checksum(ctx context.Context, s object.Store) (checksum.Checksum, error) {
	obj, err := d.object(ctx, s)
	if err != nil {
		return checksum.Checksum{}, err
	}
	return obj.checksum, nil
}

// Unsafe reports whether the unsafe flag is set.
func (d *Download) Unsafe(ctx context.Context, s object.Store) (bool, error) {
	obj, err := d.object(ctx, s)
	if err != nil {
		return false, err
	}
	return obj.unsafe, nil
}

func (d *Download) object(ctx context.Context, s object.Store) (*downloadObject, error) {
	return d.cell.EnsureObject(ctx, func(ctx context.Context, id object.Id) (*downloadObject, error) {
		payload, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		var data downloadData
		if err := codec.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding download %s: %w", id, err)
		}
		obj := downloadObject{url: data.URL, unpack: data.Unpack, unsafe: data.Unsafe}
		if data.Checksum != "" {
			sum, err := checksum.Parse(data.Checksum)
			if err != nil {
				return nil, fmt.Errorf("decoding download %s: %w", id, err)
			}
			obj.checksum = sum
		}
		return &obj, nil
	})
}
