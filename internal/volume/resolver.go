package volume

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultContainer is the directory external volumes are mounted under on macOS.
const DefaultContainer = "/Volumes"

// Resolver maps display paths to actual paths and back. It holds no mutable
// state; every call re-queries the filesystem and the mount table.
type Resolver struct {
	fs        afero.Fs
	lookup    Lookup
	container Path
}

// NewResolver returns a Resolver that checks existence on fs, enumerates
// volumes with lookup and treats container as the volume container.
func NewResolver(fs afero.Fs, lookup Lookup, container Path) *Resolver {
	return &Resolver{
		fs:        fs,
		lookup:    lookup,
		container: container,
	}
}

// Container returns the volume container the resolver was built with.
func (r *Resolver) Container() Path {
	return r.container
}

// IsUnderVolumeContainer reports whether p names something on a mounted
// volume: it lies under the container and carries at least the volume name.
// The container itself is not a volume path.
func (r *Resolver) IsUnderVolumeContainer(p Path) bool {
	if !p.HasPrefix(r.container) {
		return false
	}
	return p.Components() >= r.container.Components()+1
}

// VolumeRoot returns the container plus the volume folder segment of p.
func (r *Resolver) VolumeRoot(p Path) (Path, bool) {
	if !r.IsUnderVolumeContainer(p) {
		return Path{}, false
	}
	return p.Prefix(len(r.container.segments) + 1), true
}

// ResolveActualPath returns the path that display currently lives at. If
// display exists as a directory it is returned unchanged. Otherwise, for
// volume paths, the volume whose display name matches display's volume folder
// is located and the remainder of display is spliced onto its mount root.
//
// When several mounted volumes share the display name the first one the OS
// enumerates wins.
func (r *Resolver) ResolveActualPath(ctx context.Context, display Path) (Path, bool) {
	if r.DirExists(display) {
		return display, true
	}

	root, ok := r.VolumeRoot(display)
	if !ok {
		log.Debug().Str("path", display.String()).Msg("not found and not on a volume")
		return Path{}, false
	}

	want := root.Last()

	volumes, err := r.lookup.Volumes(ctx)
	if err != nil {
		log.Warn().Err(err).Str("volume", want).Msg("failed to enumerate mounted volumes")
		return Path{}, false
	}

	for _, v := range volumes {
		if v.DisplayName != want {
			continue
		}

		actual := v.MountRoot.Join(display.SegmentsAfter(root)...)
		log.Debug().
			Str("display", display.String()).
			Str("actual", actual.String()).
			Str("mount", v.MountRoot.String()).
			Msg("resolved through mounted volume")
		return actual, true
	}

	log.Debug().Str("volume", want).Int("mounted", len(volumes)).Msg("no mounted volume matches")
	return Path{}, false
}

// ComputeDisplayPath replaces the volume folder segment of actual with the
// volume's display name. Paths that are not on a volume, or whose volume has
// no display name available, are returned unchanged.
func (r *Resolver) ComputeDisplayPath(ctx context.Context, actual Path) Path {
	root, ok := r.VolumeRoot(actual)
	if !ok {
		return actual
	}

	name, err := r.lookup.DisplayName(ctx, root)
	if err != nil || name == "" {
		log.Debug().Err(err).Str("volume", root.String()).Msg("no display name for volume")
		return actual
	}

	return actual.WithSegment(len(root.segments)-1, name)
}

// Locate resolves a display path and pairs it with the actual path.
func (r *Resolver) Locate(ctx context.Context, display Path) (ResolvedLocation, bool) {
	actual, ok := r.ResolveActualPath(ctx, display)
	if !ok {
		return ResolvedLocation{}, false
	}
	return ResolvedLocation{ActualPath: actual, DisplayPath: display}, true
}

// Describe computes the display path of actual and pairs the two.
func (r *Resolver) Describe(ctx context.Context, actual Path) ResolvedLocation {
	return ResolvedLocation{
		ActualPath:  actual,
		DisplayPath: r.ComputeDisplayPath(ctx, actual),
	}
}

// DirExists reports whether a directory exists at p. A regular file in its
// place counts as missing and is logged.
func (r *Resolver) DirExists(p Path) bool {
	if p.IsZero() {
		return false
	}

	info, err := r.fs.Stat(p.OSPath())
	if err != nil {
		return false
	}

	if !info.IsDir() {
		log.Warn().Str("path", p.String()).Msg("a file occupies the expected directory location")
		return false
	}

	return true
}
