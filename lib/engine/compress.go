// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm applied to a
// stored payload. The tag is the first byte of every payload file.
// These values are format constants; changing them breaks existing
// stores.
type CompressionTag uint8

const (
	// CompressionNone stores the payload uncompressed. Selected when
	// probing finds the payload incompressible (small CBOR records,
	// already-compressed blob content).
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is the fast default for binary payloads.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd trades CPU for ratio on text-like payloads.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a compression tag from its string
// representation.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// zstdEncoder and zstdDecoder are reused across calls. Both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("engine: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("engine: zstd decoder initialization failed: " + err.Error())
	}
}

// errIncompressible is returned when the compressed output is not
// smaller than the input; the caller falls back to CompressionNone.
var errIncompressible = fmt.Errorf("payload is incompressible")

// framePayload compresses a payload and frames it for storage:
//
//	[tag: 1 byte] [uncompressed size: 8 bytes big-endian] [body]
//
// Incompressible payloads fall back to CompressionNone regardless of
// the requested tag.
func framePayload(payload []byte, tag CompressionTag) ([]byte, error) {
	body, err := compressPayload(payload, tag)
	if err != nil {
		if err == errIncompressible {
			tag = CompressionNone
			body = payload
		} else {
			return nil, err
		}
	}
	framed := make([]byte, 9+len(body))
	framed[0] = byte(tag)
	binary.BigEndian.PutUint64(framed[1:9], uint64(len(payload)))
	copy(framed[9:], body)
	return framed, nil
}

// unframePayload reverses framePayload, verifying the recovered
// length against the frame header.
func unframePayload(framed []byte) ([]byte, error) {
	if len(framed) < 9 {
		return nil, fmt.Errorf("payload frame is %d bytes, minimum is 9", len(framed))
	}
	tag := CompressionTag(framed[0])
	size := binary.BigEndian.Uint64(framed[1:9])
	body := framed[9:]

	switch tag {
	case CompressionNone:
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match header %d", len(body), size)
		}
		return body, nil
	case CompressionLZ4:
		payload := make([]byte, size)
		read, err := lz4.UncompressBlock(body, payload)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(read) != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return payload, nil
	case CompressionZstd:
		payload, err := zstdDecoder.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(payload), size)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressPayload(payload []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(payload))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(payload, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 when the data is incompressible.
		if written == 0 || written >= len(payload) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(payload, nil)
		if len(compressed) >= len(payload) {
			return nil, errIncompressible
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
