// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package engine_test

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/engine"
	"github.com/stratum-build/stratum/lib/module"
	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/target"
)

func TestBuildGatesUnverifiedNetworkAccess(t *testing.T) {
	ctx := context.Background()
	e := engine.New(engine.NewMemoryStore(), engine.Options{})

	tgt, err := target.New(ctx, e, target.Options{
		Host:       "linux-x86_64",
		Executable: "/bin/fetch",
		Network:    true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.Build(ctx, tgt); !errors.Is(err, engine.ErrGated) {
		t.Errorf("Build error = %v, want ErrGated", err)
	}
}

func TestBuildDispatchesToRegisteredDefinition(t *testing.T) {
	ctx := context.Background()
	registry := target.NewRegistry()
	var gotArgs int
	err := registry.Register("stratum://6162/build.st", "compile",
		func(ctx context.Context, e target.Engine, args []any) (any, error) {
			gotArgs = len(args)
			return "compiled", nil
		})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	e := engine.New(engine.NewMemoryStore(), engine.Options{Registry: registry})

	tgt, err := target.New(ctx, e, target.Options{
		Host:       "linux-x86_64",
		Executable: "/bin/cc",
		Definition: "stratum://6162/build.st",
		Name:       "compile",
		Args:       []any{"main.c", "-O2"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Build(ctx, tgt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result != "compiled" || gotArgs != 2 {
		t.Errorf("Build = %v with %d args", result, gotArgs)
	}
}

type fakeExecutor struct {
	calls int
}

func (f *fakeExecutor) Exec(ctx context.Context, p *target.Process) (any, error) {
	f.calls++
	return "executed", nil
}

func TestBuildFallsBackToExecutor(t *testing.T) {
	ctx := context.Background()
	executor := &fakeExecutor{}
	e := engine.New(engine.NewMemoryStore(), engine.Options{Executor: executor})

	tgt, err := target.New(ctx, e, target.Options{
		Host:       "linux-x86_64",
		Executable: "/bin/true",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Build(ctx, tgt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result != "executed" || executor.calls != 1 {
		t.Errorf("Build = %v, executor calls = %d", result, executor.calls)
	}
}

func TestDownloadRequiresChecksumOrUnsafe(t *testing.T) {
	ctx := context.Background()
	e := engine.New(engine.NewMemoryStore(), engine.Options{})

	dl, err := target.NewDownload("https://example.com/x", target.DownloadOptions{})
	if err != nil {
		t.Fatalf("NewDownload: %v", err)
	}
	if _, err := e.Download(ctx, dl); !errors.Is(err, engine.ErrGated) {
		t.Errorf("Download error = %v, want ErrGated", err)
	}
}

func TestDownloadVerifiesChecksum(t *testing.T) {
	ctx := context.Background()
	content := []byte("release tarball bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	e := engine.New(engine.NewMemoryStore(), engine.Options{Client: server.Client()})

	sum, err := checksum.Sum(checksum.SHA256, content)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	dl, err := target.NewDownload(server.URL+"/release.bin", target.DownloadOptions{Checksum: sum})
	if err != nil {
		t.Fatalf("NewDownload: %v", err)
	}
	got, err := e.Download(ctx, dl)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	f, ok := got.(*artifact.File)
	if !ok {
		t.Fatalf("Download returned %T, want *File", got)
	}
	text, err := f.Text(ctx, e)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != string(content) {
		t.Errorf("downloaded text = %q", text)
	}

	// A wrong checksum fails the download.
	wrong, err := checksum.Sum(checksum.SHA256, []byte("different"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	bad, err := target.NewDownload(server.URL+"/release.bin", target.DownloadOptions{Checksum: wrong})
	if err != nil {
		t.Fatalf("NewDownload: %v", err)
	}
	if _, err := e.Download(ctx, bad); err == nil {
		t.Error("mismatched checksum accepted")
	}
}

func TestDownloadUnpacksTarGz(t *testing.T) {
	ctx := context.Background()

	var archive bytes.Buffer
	gz := gzip.NewWriter(&archive)
	tw := tar.NewWriter(gz)
	files := map[string]string{
		"src/main.c": "int main(void) { return 0; }\n",
		"src/util.h": "#pragma once\n",
		"bin/run.sh": "#!/bin/sh\n",
		"README.md":  "readme\n",
	}
	for name, contents := range files {
		mode := int64(0o644)
		if name == "bin/run.sh" {
			mode = 0o755
		}
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: mode, Size: int64(len(contents))}); err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := tw.Write([]byte(contents)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive.Bytes())
	}))
	defer server.Close()

	e := engine.New(engine.NewMemoryStore(), engine.Options{Client: server.Client()})
	sum, err := checksum.Sum(checksum.BLAKE3, archive.Bytes())
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	dl, err := target.NewDownload(server.URL+"/src.tar.gz", target.DownloadOptions{Unpack: true, Checksum: sum})
	if err != nil {
		t.Fatalf("NewDownload: %v", err)
	}
	got, err := e.Download(ctx, dl)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	dir, ok := got.(*artifact.Directory)
	if !ok {
		t.Fatalf("Download returned %T, want *Directory", got)
	}

	entry, err := dir.Get(ctx, e, path.Parse("src/main.c"))
	if err != nil {
		t.Fatalf("Get(src/main.c): %v", err)
	}
	f := entry.(*artifact.File)
	text, err := f.Text(ctx, e)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != files["src/main.c"] {
		t.Errorf("main.c text = %q", text)
	}

	script, err := dir.Get(ctx, e, path.Parse("bin/run.sh"))
	if err != nil {
		t.Fatalf("Get(bin/run.sh): %v", err)
	}
	executable, err := script.(*artifact.File).Executable(ctx, e)
	if err != nil {
		t.Fatalf("Executable: %v", err)
	}
	if !executable {
		t.Error("run.sh lost its executable bit")
	}
}

func TestIncludeFromNormalRef(t *testing.T) {
	ctx := context.Background()
	e := engine.New(engine.NewMemoryStore(), engine.Options{})

	root, err := artifact.NewDirectory(ctx, e, map[string]any{
		"src/build.st": "definitions",
		"src/extra.st": "helper",
	})
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	packageId, err := module.NewPackage(root, nil).ID(ctx, e)
	if err != nil {
		t.Fatalf("package ID: %v", err)
	}
	lockId := packageId
	ref := module.Ref{Kind: module.RefNormal, PackageId: &packageId, LockId: &lockId, FilePath: "src/build.st"}
	encoded, err := ref.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := e.Include(ctx, encoded, path.Parse("extra.st"))
	if err != nil {
		t.Fatalf("Include: %v", err)
	}
	text, err := got.(*artifact.File).Text(ctx, e)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "helper" {
		t.Errorf("included text = %q", text)
	}

	// Escaping the package root fails.
	if _, err := e.Include(ctx, encoded, path.Parse("../../outside")); err == nil {
		t.Error("escaping include accepted")
	}
}
