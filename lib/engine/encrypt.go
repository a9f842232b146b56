// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/stratum-build/stratum/lib/object"
)

// KeySize is the size in bytes of the store encryption key and of
// every key derived from it.
const KeySize = 32

// encryptedPayloadVersion is the version byte prepended to encrypted
// payloads. It is part of the additional authenticated data, so
// tampering with it fails authentication.
const encryptedPayloadVersion byte = 0x01

// encryptedPayloadOverhead is the byte overhead per encrypted
// payload: 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16 (Poly1305
// tag).
const encryptedPayloadOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoPayload is the HKDF info prefix for per-object payload
// keys. Changing it invalidates every payload encrypted under it.
var hkdfInfoPayload = []byte("stratum.store.payload.v1")

// payloadKeys derives per-object encryption keys from a store master
// key. Each payload is encrypted under a key bound to its id, and the
// id is authenticated as AAD, so an attacker who can rewrite store
// files cannot swap payloads between ids.
type payloadKeys struct {
	masterKey []byte
}

func newPayloadKeys(masterKey []byte) (*payloadKeys, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("store encryption key must be %d bytes, got %d", KeySize, len(masterKey))
	}
	key := make([]byte, KeySize)
	copy(key, masterKey)
	return &payloadKeys{masterKey: key}, nil
}

// derive computes the payload key for one object id via HKDF-SHA256.
// The salt is nil: the master key is expected to be uniformly random,
// so the extract phase with a zero salt is appropriate per RFC 5869.
func (k *payloadKeys) derive(id object.Id) ([]byte, error) {
	idText := id.String()
	info := make([]byte, len(hkdfInfoPayload)+len(idText))
	copy(info, hkdfInfoPayload)
	copy(info[len(hkdfInfoPayload):], idText)

	reader := hkdf.New(sha256.New, k.masterKey, nil, info)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	return derived, nil
}

// encrypt seals a framed payload for storage:
//
//	[version: 1 byte] [nonce: 24 bytes random] [ciphertext+tag]
//
// The version byte and the object id are additional authenticated
// data.
func (k *payloadKeys) encrypt(framed []byte, id object.Id) ([]byte, error) {
	payloadKey, err := k.derive(id)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(payloadKey)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(framed)+aead.Overhead())
	output[0] = encryptedPayloadVersion
	copy(output[1:], nonce[:])
	return aead.Seal(output, nonce[:], framed, buildAAD(encryptedPayloadVersion, id)), nil
}

// decrypt opens a payload sealed by encrypt, authenticating it
// against the expected id.
func (k *payloadKeys) decrypt(sealed []byte, id object.Id) ([]byte, error) {
	if len(sealed) < encryptedPayloadOverhead {
		return nil, fmt.Errorf("encrypted payload is %d bytes, minimum is %d", len(sealed), encryptedPayloadOverhead)
	}
	version := sealed[0]
	if version != encryptedPayloadVersion {
		return nil, fmt.Errorf("encrypted payload version %d is not supported (expected %d)", version, encryptedPayloadVersion)
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[1+chacha20poly1305.NonceSizeX:]

	payloadKey, err := k.derive(id)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(payloadKey)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	framed, err := aead.Open(nil, nonce, ciphertext, buildAAD(version, id))
	if err != nil {
		return nil, fmt.Errorf("payload authentication failed (wrong key, tampered data, or mismatched id): %w", err)
	}
	return framed, nil
}

func buildAAD(version byte, id object.Id) []byte {
	idText := id.String()
	aad := make([]byte, 1+len(idText))
	aad[0] = version
	copy(aad[1:], idText)
	return aad
}
