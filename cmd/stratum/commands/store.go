// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/stratum-build/stratum/cmd/stratum/cli"
	"github.com/stratum-build/stratum/lib/artifact"
	"github.com/stratum-build/stratum/lib/engine"
	"github.com/stratum-build/stratum/lib/object"
	"github.com/stratum-build/stratum/lib/path"
	"github.com/stratum-build/stratum/lib/template"
)

func importCommand() *cli.Command {
	var configPath *string
	return &cli.Command{
		Name:    "import",
		Summary: "Import a file or directory tree into the store",
		Description: `Import reads a file or directory tree from the local filesystem,
stores it content-addressed, and prints the resulting artifact id.
Importing the same tree twice prints the same id and stores nothing
new.`,
		Usage: "stratum import [flags] <path>",
		Examples: []cli.Example{
			{Description: "Import a source tree", Command: "stratum import ./src"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
			configPath = configFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one path argument")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			imported, err := engine.ImportTree(ctx, store, args[0])
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			id, err := imported.ID(ctx, store)
			if err != nil {
				return err
			}
			logger.Info("imported", "path", args[0], "id", id.String())
			fmt.Println(id)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	var configPath *string
	return &cli.Command{
		Name:    "export",
		Summary: "Export a stored artifact to the local filesystem",
		Usage:   "stratum export [flags] <id> <dest>",
		Examples: []cli.Example{
			{Description: "Materialize a directory tree", Command: "stratum export dir-4fc3... ./out"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			configPath = configFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <id> and <dest> arguments")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			id, err := object.ParseId(args[0])
			if err != nil {
				return err
			}
			a, err := artifact.FromId(id)
			if err != nil {
				return err
			}
			if err := engine.ExportTree(ctx, store, a, args[1]); err != nil {
				return fmt.Errorf("exporting %s: %w", id, err)
			}
			logger.Info("exported", "id", id.String(), "dest", args[1])
			return nil
		},
	}
}

func catCommand() *cli.Command {
	var configPath *string
	return &cli.Command{
		Name:    "cat",
		Summary: "Print the contents of a stored file",
		Description: `Cat prints the contents of a stored file to stdout. Given a
directory id, a relative path selects the file within it; symlinks
along the path are resolved against the directory root.`,
		Usage: "stratum cat [flags] <id> [path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
			configPath = configFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("expected <id> and optional <path> arguments")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			id, err := object.ParseId(args[0])
			if err != nil {
				return err
			}
			a, err := artifact.FromId(id)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				dir, ok := a.(*artifact.Directory)
				if !ok {
					return fmt.Errorf("%s is not a directory", id)
				}
				if a, err = dir.Get(ctx, store, path.Parse(args[1])); err != nil {
					return err
				}
			}
			file, ok := a.(*artifact.File)
			if !ok {
				return fmt.Errorf("not a file (kind %s)", a.Kind())
			}
			contents, err := file.Contents(ctx, store)
			if err != nil {
				return err
			}
			data, err := contents.Bytes(ctx, store)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func statCommand() *cli.Command {
	var configPath *string
	return &cli.Command{
		Name:    "stat",
		Summary: "Describe a stored artifact",
		Usage:   "stratum stat [flags] <id>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("stat", pflag.ContinueOnError)
			configPath = configFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one id argument")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			id, err := object.ParseId(args[0])
			if err != nil {
				return err
			}
			a, err := artifact.FromId(id)
			if err != nil {
				return err
			}
			fmt.Printf("id:   %s\n", id)
			fmt.Printf("kind: %s\n", a.Kind())

			switch concrete := a.(type) {
			case *artifact.Directory:
				entries, err := concrete.Entries(ctx, store)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(entries))
				for name := range entries {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Printf("entries: %d\n", len(names))
				for _, name := range names {
					fmt.Printf("  %s  %s\n", entries[name].Kind(), name)
				}
			case *artifact.File:
				contents, err := concrete.Contents(ctx, store)
				if err != nil {
					return err
				}
				size, err := contents.Size(ctx, store)
				if err != nil {
					return err
				}
				executable, err := concrete.Executable(ctx, store)
				if err != nil {
					return err
				}
				fmt.Printf("size: %d\n", size)
				fmt.Printf("executable: %t\n", executable)
			case *artifact.Symlink:
				target, err := concrete.Target(ctx, store)
				if err != nil {
					return err
				}
				rendered, err := describeTemplate(ctx, store, target)
				if err != nil {
					return err
				}
				fmt.Printf("target: %s\n", rendered)
			}
			return nil
		},
	}
}

// describeTemplate renders a template for display. Artifact
// components print as their id, placeholders as {name}.
func describeTemplate(ctx context.Context, store object.Store, t *template.Template) (string, error) {
	var rendered strings.Builder
	for _, component := range t.Components() {
		switch component := component.(type) {
		case template.Literal:
			rendered.WriteString(string(component))
		case template.ArtifactRef:
			id, err := component.Artifact.ID(ctx, store)
			if err != nil {
				return "", err
			}
			rendered.WriteString(id.String())
		case template.Placeholder:
			rendered.WriteString("{" + component.Name + "}")
		}
	}
	return rendered.String(), nil
}
