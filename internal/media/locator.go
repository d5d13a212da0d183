// Package media locates the media directory: it reuses a recorded display
// path while its volume is still reachable and otherwise asks the user.
package media

import (
	"context"
	"fmt"

	"github.com/hay-kot/voldir/internal/picker"
	"github.com/hay-kot/voldir/internal/volume"
	"github.com/rs/zerolog/log"
)

const promptTitle = "Please Select Media Directory"

type Locator struct {
	resolver *volume.Resolver
	picker   picker.Picker
	leafName string
}

// NewLocator returns a Locator that appends leafName to picked directories
// that do not already end with it.
func NewLocator(resolver *volume.Resolver, p picker.Picker, leafName string) *Locator {
	return &Locator{
		resolver: resolver,
		picker:   p,
		leafName: leafName,
	}
}

// Locate returns the media directory location. A stored display path that
// still resolves is used as-is; otherwise the user is prompted. The bool is
// false when the user cancels the prompt.
func (l *Locator) Locate(ctx context.Context, stored *volume.Path) (volume.ResolvedLocation, bool, error) {
	if stored != nil && !stored.IsZero() {
		if loc, ok := l.resolver.Locate(ctx, *stored); ok {
			log.Debug().
				Str("display", loc.DisplayPath.String()).
				Str("actual", loc.ActualPath.String()).
				Msg("stored media directory resolved")
			return loc, true, nil
		}
		log.Info().Str("display", stored.String()).Msg("stored media directory is unavailable")
	}

	return l.Prompt(ctx, l.startDir(stored))
}

// Prompt asks the user for a directory and derives the location from it.
func (l *Locator) Prompt(ctx context.Context, startDir string) (volume.ResolvedLocation, bool, error) {
	chosen, ok, err := l.picker.Choose(ctx, picker.Options{
		Title:       promptTitle,
		StartDir:    startDir,
		AllowCreate: true,
	})
	if err != nil {
		return volume.ResolvedLocation{}, false, fmt.Errorf("failed to choose media directory: %w", err)
	}
	if !ok {
		return volume.ResolvedLocation{}, false, nil
	}

	actual := NormalizeLeaf(volume.ParsePath(chosen), l.leafName)
	return l.resolver.Describe(ctx, actual), true, nil
}

// startDir is the closest existing ancestor of the stored path, so the prompt
// opens near where the media directory used to be.
func (l *Locator) startDir(stored *volume.Path) string {
	if stored == nil {
		return ""
	}

	for p := *stored; p.Components() > 1; p = p.Prefix(len(p.Segments()) - 1) {
		if l.resolver.DirExists(p) {
			return p.OSPath()
		}
	}
	return ""
}

// NormalizeLeaf appends leaf to p unless p already ends with it.
func NormalizeLeaf(p volume.Path, leaf string) volume.Path {
	if leaf == "" || p.Last() == leaf {
		return p
	}
	return p.Join(leaf)
}
