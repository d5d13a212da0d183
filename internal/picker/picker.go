// Package picker prompts the user to choose a directory. The prompt blocks
// until the user answers; cancelling yields no result rather than an error.
package picker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("directory picker requires an interactive terminal")

// Options configures a prompt. Only directories can be chosen and only one
// per prompt.
type Options struct {
	Title    string
	StartDir string
	// AllowCreate lets the user name a new folder to create inside the
	// chosen directory.
	AllowCreate bool
}

type Picker interface {
	// Choose blocks until the user picks a directory or cancels. The bool is
	// false on cancel.
	Choose(ctx context.Context, opts Options) (string, bool, error)
}

var _ Picker = &HuhPicker{}

// HuhPicker is a terminal folder picker built on huh.
type HuhPicker struct {
	isTerminal func() bool
	run        func(ctx context.Context, form *huh.Form) error
	mkdirAll   func(path string, perm os.FileMode) error
}

func NewHuhPicker() *HuhPicker {
	return &HuhPicker{
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		run: func(ctx context.Context, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
		mkdirAll: os.MkdirAll,
	}
}

// Choose implements Picker.
func (hp *HuhPicker) Choose(ctx context.Context, opts Options) (string, bool, error) {
	if !hp.isTerminal() {
		return "", false, ErrNoTerminal
	}

	startDir := opts.StartDir
	if startDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			startDir = home
		}
	}

	var (
		chosen    string
		newFolder string
	)

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewFilePicker().
				Title(opts.Title).
				Description("Directories only").
				CurrentDirectory(startDir).
				DirAllowed(true).
				FileAllowed(false).
				ShowHidden(false).
				Picking(true).
				Value(&chosen),
		),
	}

	if opts.AllowCreate {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("New folder").
				Description("Optional folder to create inside the chosen directory").
				Validate(validateFolderName).
				Value(&newFolder),
		))
	}

	err := hp.run(ctx, huh.NewForm(groups...))
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		log.Debug().Msg("directory prompt cancelled")
		return "", false, nil
	case err != nil:
		return "", false, err
	}

	return hp.finish(opts, chosen, newFolder)
}

// finish applies the optional folder creation to the chosen directory.
func (hp *HuhPicker) finish(opts Options, chosen, newFolder string) (string, bool, error) {
	if chosen == "" {
		return "", false, nil
	}

	newFolder = strings.TrimSpace(newFolder)
	if !opts.AllowCreate || newFolder == "" {
		return chosen, true, nil
	}

	if err := validateFolderName(newFolder); err != nil {
		return "", false, err
	}

	dir := filepath.Join(chosen, newFolder)
	if err := hp.mkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	log.Info().Str("path", dir).Msg("created folder")
	return dir, true, nil
}

func validateFolderName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%q is not a folder name", s)
	}
	return nil
}
