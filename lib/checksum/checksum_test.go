// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"strings"
	"testing"
)

func TestSumAndVerify(t *testing.T) {
	for _, algorithm := range []Algorithm{SHA256, BLAKE3} {
		sum, err := Sum(algorithm, []byte("payload"))
		if err != nil {
			t.Fatalf("Sum(%s): %v", algorithm, err)
		}
		if err := sum.Verify([]byte("payload")); err != nil {
			t.Errorf("Verify(%s): %v", algorithm, err)
		}
		if err := sum.Verify([]byte("tampered")); err == nil {
			t.Errorf("Verify(%s) accepted tampered data", algorithm)
		}
	}
}

func TestKnownSHA256Vector(t *testing.T) {
	sum, err := Sum(SHA256, []byte("abc"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	want := "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if sum.String() != want {
		t.Errorf("Sum(abc) = %s, want %s", sum, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	sum, err := Sum(BLAKE3, []byte("round trip"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	parsed, err := Parse(sum.String())
	if err != nil {
		t.Fatalf("Parse(%s): %v", sum, err)
	}
	if parsed != sum {
		t.Errorf("Parse(%s) = %s", sum, parsed)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"deadbeef",
		"md5:" + strings.Repeat("00", 32),
		"sha256:deadbeef",
		"sha256:not-hex-" + strings.Repeat("0", 56),
	} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) accepted", bad)
		}
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	direct, err := Sum(SHA256, []byte("streamed content"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	streamed, err := SumReader(SHA256, strings.NewReader("streamed content"))
	if err != nil {
		t.Fatalf("SumReader: %v", err)
	}
	if direct != streamed {
		t.Errorf("SumReader = %s, Sum = %s", streamed, direct)
	}
}

func TestZeroChecksum(t *testing.T) {
	var zero Checksum
	if !zero.IsZero() {
		t.Error("zero value is not IsZero")
	}
	sum, err := Sum(SHA256, nil)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if sum.IsZero() {
		t.Error("computed checksum reports IsZero")
	}
}
