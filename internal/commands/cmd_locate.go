package commands

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/voldir/internal/core"
	"github.com/hay-kot/voldir/internal/media"
	"github.com/hay-kot/voldir/internal/picker"
	"github.com/hay-kot/voldir/internal/volume"
)

var ErrNoSelection = errors.New("no media directory chosen")

// newPicker builds the directory prompt. Tests replace it.
var newPicker = func() picker.Picker { return picker.NewHuhPicker() }

type LocateCmd struct {
	coreFlags *core.Flags
	flags     struct {
		Display string
		Leaf    string
		Format  string
	}
}

func NewLocateCmd(coreFlags *core.Flags) *LocateCmd {
	return &LocateCmd{coreFlags: coreFlags}
}

func (lc *LocateCmd) Register(app *cli.Command) *cli.Command {
	cmd := &cli.Command{
		Name:  "locate",
		Usage: "find the media directory, prompting for it when the recorded one is unavailable",
		Description: `Resolves the recorded display path (--display, or display_path in the config
file). When it cannot be resolved a folder prompt is shown; the media directory
name is appended to the chosen folder unless it already ends with it.

Prints the actual path, or with --format yaml both paths so the display path
can be recorded for the next run.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "display",
				Aliases:     []string{"d"},
				Usage:       "previously recorded display path",
				Destination: &lc.flags.Display,
			},
			&cli.StringFlag{
				Name:        "leaf",
				Usage:       "media directory name (default: media_directory from the config)",
				Destination: &lc.flags.Leaf,
			},
			formatFlag(&lc.flags.Format),
		},
		Action: lc.locate,
	}

	app.Commands = append(app.Commands, cmd)
	return app
}

func (lc *LocateCmd) locate(ctx context.Context, c *cli.Command) error {
	e, err := setupEnv(lc.coreFlags)
	if err != nil {
		return err
	}

	leaf := e.cfg.MediaDirectory
	if lc.flags.Leaf != "" {
		leaf = lc.flags.Leaf
	}

	var stored *volume.Path
	switch {
	case lc.flags.Display != "":
		p, err := e.paths.ResolvePath(lc.flags.Display)
		if err != nil {
			return err
		}
		stored = &p
	default:
		if p, ok := e.cfg.StoredDisplayPath(); ok {
			stored = &p
		}
	}

	locator := media.NewLocator(e.resolver, newPicker(), leaf)

	loc, ok, err := locator.Locate(ctx, stored)
	if err != nil {
		return err
	}
	if !ok {
		log.Info().Msg("directory prompt cancelled")
		return ErrNoSelection
	}

	return writeLocation(ctx, lc.flags.Format, loc, loc.ActualPath)
}
