package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/voldir/internal/core"
)

type ResolveCmd struct {
	coreFlags *core.Flags
	flags     struct {
		Format string
	}
}

func NewResolveCmd(coreFlags *core.Flags) *ResolveCmd {
	return &ResolveCmd{coreFlags: coreFlags}
}

func (rc *ResolveCmd) Register(app *cli.Command) *cli.Command {
	cmds := []*cli.Command{
		{
			Name:      "resolve",
			Usage:     "print the current path of a recorded display path",
			ArgsUsage: "<display-path>",
			Description: `Maps a display path back to where it is mounted right now.

If the path exists it is printed unchanged. Otherwise, when the path is on a
volume under the volume container, the mounted volume with the same display
name is found and the rest of the path is placed under its mount point.

Example:
	voldir resolve "/Volumes/MyDisk/Shows"   # /Volumes/MyDisk 1/Shows

Exits non-zero when the path cannot be resolved.`,
			Flags:  []cli.Flag{formatFlag(&rc.flags.Format)},
			Action: rc.resolve,
		},
		{
			Name:      "display",
			Usage:     "print the display path of an actual path",
			ArgsUsage: "<actual-path>",
			Description: `Replaces the mount folder of a volume path with the volume's display name.
Paths that are not on a volume are printed unchanged.

Example:
	voldir display "/Volumes/MyDisk 1/Shows"   # /Volumes/MyDisk/Shows`,
			Flags:  []cli.Flag{formatFlag(&rc.flags.Format)},
			Action: rc.display,
		},
	}

	app.Commands = append(app.Commands, cmds...)
	return app
}

func pathArg(c *cli.Command) (string, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", errors.New("a path argument is required")
	}
	if c.Args().Len() > 1 {
		return "", fmt.Errorf("expected one path, got %d (quote paths containing spaces)", c.Args().Len())
	}
	return arg, nil
}

func (rc *ResolveCmd) resolve(ctx context.Context, c *cli.Command) error {
	arg, err := pathArg(c)
	if err != nil {
		return err
	}

	e, err := setupEnv(rc.coreFlags)
	if err != nil {
		return err
	}

	display, err := e.paths.ResolvePath(arg)
	if err != nil {
		return err
	}

	loc, ok := e.resolver.Locate(ctx, display)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnresolved, display)
	}

	log.Debug().Str("display", display.String()).Str("actual", loc.ActualPath.String()).Msg("resolved")
	return writeLocation(ctx, rc.flags.Format, loc, loc.ActualPath)
}

func (rc *ResolveCmd) display(ctx context.Context, c *cli.Command) error {
	arg, err := pathArg(c)
	if err != nil {
		return err
	}

	e, err := setupEnv(rc.coreFlags)
	if err != nil {
		return err
	}

	actual, err := e.paths.ResolvePath(arg)
	if err != nil {
		return err
	}

	loc := e.resolver.Describe(ctx, actual)
	return writeLocation(ctx, rc.flags.Format, loc, loc.DisplayPath)
}
