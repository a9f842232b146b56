// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for stratum commands.
//
// Configuration is loaded from a single file specified by:
//   - STRATUM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. The config file may
// contain environment-specific sections (development, production)
// that override base values when the environment matches.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Production is for CI and shared build hosts.
	Production Environment = "production"
)

// Config is the master configuration for stratum.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Store configures the on-disk object store.
	Store StoreConfig `yaml:"store"`

	// Build configures build execution defaults.
	Build BuildConfig `yaml:"build"`

	// Library is the directory holding the built-in module tree.
	Library string `yaml:"library"`

	// EnvironmentOverrides are applied after the base config loads.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Store *StoreConfig `yaml:"store,omitempty"`
	Build *BuildConfig `yaml:"build,omitempty"`
}

// StoreConfig configures the on-disk object store.
type StoreConfig struct {
	// Root is the store directory.
	// Default: ~/.cache/stratum/store
	Root string `yaml:"root"`

	// Compression selects the payload compression tag: "none", "lz4",
	// or "zstd".
	// Default: lz4
	Compression string `yaml:"compression"`

	// KeyFile, when set, points at a 32-byte key file enabling
	// encryption at rest.
	KeyFile string `yaml:"key_file"`
}

// BuildConfig configures build execution defaults.
type BuildConfig struct {
	// Host is the default execution host identifier for targets that
	// do not specify one.
	// Default: linux-x86_64
	Host string `yaml:"host"`

	// AllowUnsafe permits unsafe build steps (network or host-path
	// access without a checksum).
	// Default: true (development), false (production)
	AllowUnsafe bool `yaml:"allow_unsafe"`

	// DownloadTimeout bounds a single download.
	// Default: 5m
	DownloadTimeout string `yaml:"download_timeout"`
}

// Default returns the default configuration. These defaults ensure
// all fields have sensible values before the config file loads; the
// config file remains the single source of truth.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "stratum")

	return &Config{
		Environment: Development,
		Store: StoreConfig{
			Root:        filepath.Join(defaultRoot, "store"),
			Compression: "lz4",
		},
		Build: BuildConfig{
			Host:            "linux-x86_64",
			AllowUnsafe:     true,
			DownloadTimeout: "5m",
		},
	}
}

// Load loads configuration from the STRATUM_CONFIG environment
// variable. There are no fallbacks: if STRATUM_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("STRATUM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("STRATUM_CONFIG environment variable not set; " +
			"set it to the path of your stratum.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Environment
// variables do not override config values; the only expansion
// performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching the
// configured environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production default: never run unverified steps.
		if overrides == nil {
			overrides = &Overrides{
				Build: &BuildConfig{AllowUnsafe: false},
			}
		}
	}
	if overrides == nil {
		return
	}

	if overrides.Store != nil {
		if overrides.Store.Root != "" {
			c.Store.Root = overrides.Store.Root
		}
		if overrides.Store.Compression != "" {
			c.Store.Compression = overrides.Store.Compression
		}
		if overrides.Store.KeyFile != "" {
			c.Store.KeyFile = overrides.Store.KeyFile
		}
	}
	if overrides.Build != nil {
		if overrides.Build.Host != "" {
			c.Build.Host = overrides.Build.Host
		}
		// AllowUnsafe is a bool, so it always applies from overrides.
		c.Build.AllowUnsafe = overrides.Build.AllowUnsafe
		if overrides.Build.DownloadTimeout != "" {
			c.Build.DownloadTimeout = overrides.Build.DownloadTimeout
		}
	}
}

// variablePattern matches ${VAR} references in path values.
var variablePattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)

// expandVariables expands ${HOME} and similar references in path
// fields.
func (c *Config) expandVariables() {
	c.Store.Root = expand(c.Store.Root)
	c.Store.KeyFile = expand(c.Store.KeyFile)
	c.Library = expand(c.Library)
}

func expand(value string) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if resolved, ok := os.LookupEnv(name); ok {
			return resolved
		}
		return match
	})
}
