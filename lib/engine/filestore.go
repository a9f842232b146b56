// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stratum-build/stratum/lib/object"
)

// FileStore is an on-disk object store. Payloads live under
//
//	<root>/<kind>/<hex[:2]>/<hex>
//
// compressed behind a one-byte tag and optionally encrypted at rest.
// Writes are atomic (temp file + rename), and because file names are
// content ids a payload that already exists is never rewritten.
type FileStore struct {
	root        string
	compression CompressionTag
	keys        *payloadKeys
	logger      *slog.Logger
}

// FileStoreOptions configure a FileStore.
type FileStoreOptions struct {
	// Compression selects the tag tried for new payloads.
	// Incompressible payloads are stored uncompressed regardless.
	// Defaults to CompressionLZ4 (note the zero value is
	// CompressionNone, which disables compression).
	Compression *CompressionTag

	// EncryptionKey, when non-nil, encrypts payloads at rest. Must be
	// exactly KeySize bytes.
	EncryptionKey []byte

	Logger *slog.Logger
}

// NewFileStore opens (creating if needed) a store rooted at root.
func NewFileStore(root string, opts FileStoreOptions) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	fs := &FileStore{
		root:        root,
		compression: CompressionLZ4,
		logger:      opts.Logger,
	}
	if opts.Compression != nil {
		fs.compression = *opts.Compression
	}
	if fs.logger == nil {
		fs.logger = slog.Default()
	}
	if opts.EncryptionKey != nil {
		keys, err := newPayloadKeys(opts.EncryptionKey)
		if err != nil {
			return nil, err
		}
		fs.keys = keys
	}
	return fs, nil
}

// Store content-addresses the payload and persists it if absent.
func (fs *FileStore) Store(ctx context.Context, kind object.Kind, payload []byte) (object.Id, error) {
	if !kind.Valid() {
		return object.Id{}, fmt.Errorf("storing object: invalid kind %d", kind)
	}
	id := object.ComputeId(kind, payload)
	filePath := fs.payloadPath(id)
	if _, err := os.Stat(filePath); err == nil {
		return id, nil
	}

	framed, err := framePayload(payload, fs.compression)
	if err != nil {
		return object.Id{}, fmt.Errorf("framing %s: %w", id, err)
	}
	if fs.keys != nil {
		if framed, err = fs.keys.encrypt(framed, id); err != nil {
			return object.Id{}, fmt.Errorf("encrypting %s: %w", id, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return object.Id{}, fmt.Errorf("creating shard directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".tmp-*")
	if err != nil {
		return object.Id{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(framed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return object.Id{}, fmt.Errorf("writing %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return object.Id{}, fmt.Errorf("closing %s: %w", id, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return object.Id{}, fmt.Errorf("committing %s: %w", id, err)
	}
	return id, nil
}

// Load fetches a payload by id, verifying it still hashes to that id.
func (fs *FileStore) Load(ctx context.Context, id object.Id) ([]byte, error) {
	framed, err := os.ReadFile(fs.payloadPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", id, object.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	if fs.keys != nil {
		if framed, err = fs.keys.decrypt(framed, id); err != nil {
			return nil, fmt.Errorf("decrypting %s: %w", id, err)
		}
	}
	payload, err := unframePayload(framed)
	if err != nil {
		return nil, fmt.Errorf("unframing %s: %w", id, err)
	}

	actual := object.ComputeId(id.Kind(), payload)
	if actual != id {
		fs.logger.Warn("store payload corrupted",
			"id", id.String(),
			"actual", actual.String(),
		)
		return nil, fmt.Errorf("object %s: payload hashes to %s", id, actual)
	}
	return payload, nil
}

func (fs *FileStore) payloadPath(id object.Id) string {
	hexPart := object.FormatHash(id.Hash())
	return filepath.Join(fs.root, id.Kind().String(), hexPart[:2], hexPart)
}
