// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/blob"
	"github.com/stratum-build/stratum/lib/object"
)

// unpackArchive turns downloaded archive bytes into a directory
// artifact. The format is chosen by the URL suffix: .tar, .tar.gz and
// .tgz, .tar.zst. Tar entry paths are used verbatim as nested
// directory keys, so path validation happens in the directory merge.
func unpackArchive(ctx context.Context, s object.Store, name string, data []byte) (*artifact.Directory, error) {
	var reader io.Reader = bytes.NewReader(data)
	switch {
	case strings.HasSuffix(name, ".tar"):
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", name, err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(name, ".tar.zst"):
		zr, err := zstd.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", name, err)
		}
		defer zr.Close()
		reader = zr
	default:
		return nil, fmt.Errorf("unpacking %s: unsupported archive format", name)
	}
	return unpackTar(ctx, s, name, tar.NewReader(reader))
}

func unpackTar(ctx context.Context, s object.Store, name string, tr *tar.Reader) (*artifact.Directory, error) {
	entries := map[string]any{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", name, err)
		}
		entryName := strings.Trim(header.Name, "/")
		if entryName == "" || entryName == "." {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			// Only record empty directories; populated ones are implied
			// by their entries.
			if _, exists := entries[entryName]; !exists {
				entries[entryName] = map[string]any{}
			}
		case tar.TypeReg:
			contents, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("unpacking %s entry %q: %w", name, entryName, err)
			}
			entries[entryName] = artifact.NewFile(blob.FromBytes(contents), &artifact.FileOptions{
				Executable: header.FileInfo().Mode()&0o111 != 0,
			})
		case tar.TypeSymlink:
			link, err := artifact.NewSymlink(header.Linkname)
			if err != nil {
				return nil, fmt.Errorf("unpacking %s entry %q: %w", name, entryName, err)
			}
			entries[entryName] = link
		default:
			return nil, fmt.Errorf("unpacking %s entry %q: unsupported entry type %d", name, entryName, header.Typeflag)
		}
	}
	return artifact.NewDirectory(ctx, s, entries)
}
