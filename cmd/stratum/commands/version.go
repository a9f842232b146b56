// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/stratum-build/stratum/cmd/stratum/cli"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Println("stratum (unknown build)")
				return nil
			}
			version := info.Main.Version
			if version == "" || version == "(devel)" {
				version = "devel"
			}
			revision := ""
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					revision = setting.Value
				}
			}
			if revision != "" {
				fmt.Printf("stratum %s (%s)\n", version, revision)
			} else {
				fmt.Printf("stratum %s\n", version)
			}
			return nil
		},
	}
}
