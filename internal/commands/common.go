// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/voldir/internal/core"
	"github.com/hay-kot/voldir/internal/volume"
	"github.com/hay-kot/voldir/pkgs/printer"
)

var ErrUnresolved = errors.New("path cannot be resolved")

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// env is the per-invocation state shared by commands.
type env struct {
	cfg      core.ConfigFile
	fs       afero.Fs
	lookup   volume.Lookup
	resolver *volume.Resolver
	paths    core.PathResolver
}

// newLookup builds the mount table lookup. Tests replace it.
var newLookup = volume.NewSystemLookup

func setupEnv(flags *core.Flags) (*env, error) {
	cfg, err := core.SetupEnv(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	fs := afero.NewOsFs()
	container := cfg.ContainerPath()
	lookup := newLookup(fs, container)

	return &env{
		cfg:      cfg,
		fs:       fs,
		lookup:   lookup,
		resolver: volume.NewResolver(fs, lookup, container),
		// arguments are relative to where the user is, not the config file
		paths: core.NewPathResolver(""),
	}, nil
}

func formatFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "output format: 'text' or 'yaml'",
		Value:       FormatText,
		Destination: dest,
		Validator: func(s string) error {
			if s != FormatText && s != FormatYAML {
				return fmt.Errorf("invalid format %q (expected %q or %q)", s, FormatText, FormatYAML)
			}
			return nil
		},
	}
}

func writeYAML(ctx context.Context, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	printer.Ctx(ctx).Line(strings.TrimRight(string(data), "\n"))
	return nil
}

// writeLocation prints a location; text output is the single path the
// command was asked for so it can be used in scripts.
func writeLocation(ctx context.Context, format string, loc volume.ResolvedLocation, primary volume.Path) error {
	if format == FormatYAML {
		return writeYAML(ctx, loc)
	}
	printer.Ctx(ctx).Line(primary.String())
	return nil
}
