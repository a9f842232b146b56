// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the stratum command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/stratum-build/stratum/cmd/stratum/cli"
	"github.com/stratum-build/stratum/lib/config"
	"github.com/stratum-build/stratum/lib/engine"
)

// Root returns the top-level stratum command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "stratum",
		Summary: "Content-addressed build tool",
		Description: `stratum stores build artifacts in a content-addressed object store
and evaluates build targets against it. Every object is named by the
hash of its contents, so identical inputs are stored once and builds
are reproducible by construction.`,
		Subcommands: []*cli.Command{
			importCommand(),
			exportCommand(),
			catCommand(),
			statCommand(),
			downloadCommand(),
			versionCommand(),
		},
	}
}

// configFlags adds the shared --config flag to a flag set and returns
// the bound value.
func configFlags(flagSet *pflag.FlagSet) *string {
	return flagSet.String("config", "", "path to the stratum config file (overrides STRATUM_CONFIG)")
}

// loadConfig loads configuration from the --config flag value, or
// from STRATUM_CONFIG when the flag is empty. Commands that only need
// a store fall back to defaults when neither is set.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("STRATUM_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// openStore builds the on-disk object store described by the config.
func openStore(cfg *config.Config) (*engine.FileStore, error) {
	compression, err := engine.ParseCompressionTag(cfg.Store.Compression)
	if err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	options := engine.FileStoreOptions{Compression: &compression}
	if cfg.Store.KeyFile != "" {
		key, err := os.ReadFile(cfg.Store.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading store key: %w", err)
		}
		options.EncryptionKey = key
	}
	return engine.NewFileStore(cfg.Store.Root, options)
}
