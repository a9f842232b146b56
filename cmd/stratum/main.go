// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Command stratum is the command-line interface to the stratum
// content-addressed build tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stratum-build/stratum/cmd/stratum/cli"
	"github.com/stratum-build/stratum/cmd/stratum/commands"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cli.NewCommandLogger(os.Getenv("STRATUM_DEBUG") != "")
	return commands.Root().Execute(ctx, os.Args[1:], logger)
}
