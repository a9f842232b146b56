// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/stratum-build/stratum/cmd/stratum/cli"
	"github.com/stratum-build/stratum/lib/checksum"
	"github.com/stratum-build/stratum/lib/config"
	"github.com/stratum-build/stratum/lib/engine"
	"github.com/stratum-build/stratum/lib/target"
)

func downloadCommand() *cli.Command {
	var (
		configPath   *string
		checksumText *string
		unpack       *bool
		unsafe       *bool
		out          *string
	)
	return &cli.Command{
		Name:    "download",
		Summary: "Download a URL into the store",
		Description: `Download fetches a URL, verifies it against the given checksum, and
stores the result as an artifact. Without a checksum the download is
refused unless --unsafe is passed (and the config permits unsafe
steps). With --unpack, recognized archives (.tar, .tar.gz, .tgz,
.tar.zst) are expanded into a directory artifact.`,
		Usage: "stratum download [flags] <url>",
		Examples: []cli.Example{
			{
				Description: "Fetch and unpack a verified release",
				Command:     "stratum download --unpack --checksum sha256:9f86d0... https://example.com/release.tar.gz",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("download", pflag.ContinueOnError)
			configPath = configFlags(flagSet)
			checksumText = flagSet.String("checksum", "", "expected checksum, as <algorithm>:<hex>")
			unpack = flagSet.Bool("unpack", false, "unpack a downloaded archive into a directory")
			unsafe = flagSet.Bool("unsafe", false, "allow downloading without a checksum")
			out = flagSet.String("out", "", "also export the artifact to this path")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one URL argument")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if *unsafe && !cfg.Build.AllowUnsafe {
				return &cli.ExitError{Code: 2, Message: "unsafe downloads are disabled by config"}
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			options := target.DownloadOptions{Unpack: *unpack, Unsafe: *unsafe}
			if *checksumText != "" {
				if options.Checksum, err = checksum.Parse(*checksumText); err != nil {
					return err
				}
			}
			dl, err := target.NewDownload(args[0], options)
			if err != nil {
				return err
			}

			e := engine.New(store, engine.Options{
				Client: downloadClient(cfg),
				Logger: logger,
			})
			got, err := e.Download(ctx, dl)
			if err != nil {
				return err
			}
			id, err := got.ID(ctx, store)
			if err != nil {
				return err
			}
			logger.Info("downloaded", "url", args[0], "id", id.String())
			fmt.Println(id)

			if *out != "" {
				if err := engine.ExportTree(ctx, store, got, *out); err != nil {
					return fmt.Errorf("exporting to %s: %w", *out, err)
				}
			}
			return nil
		},
	}
}

// downloadClient builds an HTTP client honoring the configured
// download timeout.
func downloadClient(cfg *config.Config) *http.Client {
	timeout := 5 * time.Minute
	if cfg.Build.DownloadTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.Build.DownloadTimeout); err == nil {
			timeout = parsed
		}
	}
	return &http.Client{Timeout: timeout}
}
