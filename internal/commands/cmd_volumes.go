package commands

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/voldir/internal/core"
	"github.com/hay-kot/voldir/internal/volume"
	"github.com/hay-kot/voldir/pkgs/printer"
	"github.com/hay-kot/voldir/pkgs/styles"
)

type VolumesCmd struct {
	coreFlags *core.Flags
	flags     struct {
		Format string
	}
}

func NewVolumesCmd(coreFlags *core.Flags) *VolumesCmd {
	return &VolumesCmd{coreFlags: coreFlags}
}

func (vc *VolumesCmd) Register(app *cli.Command) *cli.Command {
	cmd := &cli.Command{
		Name:      "volumes",
		Usage:     "list the volumes mounted under the volume container",
		ArgsUsage: "[expression]",
		Description: `Lists mounted volumes with their display names and mount points, optionally
filtered by an expression.

 Examples:
	 voldir volumes                          # All volumes
	 voldir volumes renamed                  # Volumes mounted under a different folder name
	 voldir volumes 'name == "MyDisk"'       # A specific volume

 Expression variables:
	 - name: Display name reported by the OS
	 - folder: Mount folder name
	 - mount: Full mount path
	 - renamed: folder != name`,
		Flags:  []cli.Flag{formatFlag(&vc.flags.Format)},
		Action: vc.list,
	}

	app.Commands = append(app.Commands, cmd)
	return app
}

var spinnerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("10")) // Green

func (vc *VolumesCmd) list(ctx context.Context, c *cli.Command) error {
	e, err := setupEnv(vc.coreFlags)
	if err != nil {
		return err
	}

	code := strings.Join(c.Args().Slice(), " ")

	volumes, err := enumerate(ctx, e.lookup)
	if err != nil {
		return err
	}

	matched, err := filterVolumes(volumes, code)
	if err != nil {
		return err
	}

	log.Debug().
		Str("container", e.cfg.Container).
		Str("expr", code).
		Int("mounted", len(volumes)).
		Int("matched", len(matched)).
		Msg("volumes")

	if vc.flags.Format == FormatYAML {
		return writeYAML(ctx, matched)
	}

	p := printer.Ctx(ctx)
	if len(matched) == 0 {
		p.Line("No volumes found under " + e.cfg.Container)
		return nil
	}

	kvs := make([]printer.KeyValue, 0, len(matched))
	for _, v := range matched {
		kvs = append(kvs, printer.KeyValue{
			Key:   v.DisplayName,
			Value: styles.Arrow + " " + v.MountRoot.String(),
		})
	}

	p.KeyValues(styles.Drive+" Volumes in "+e.cfg.Container, kvs)
	return nil
}

// enumerate queries the mount table, showing a spinner on interactive
// terminals since display name lookups can shell out per volume.
func enumerate(ctx context.Context, lookup volume.Lookup) ([]volume.Volume, error) {
	var (
		volumes []volume.Volume
		err     error
		ran     bool
	)

	action := func() {
		volumes, err = lookup.Volumes(ctx)
		ran = true
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		action()
		return volumes, err
	}

	spin := spinner.New().
		Type(spinner.Line).
		Style(spinnerStyle).
		Title(" Reading mounted volumes").
		Action(action)

	if spinErr := spin.Run(); spinErr != nil {
		log.Warn().Err(spinErr).Msg("spinner failed")
	}

	if !ran {
		action()
	}

	return volumes, err
}
