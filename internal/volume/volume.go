// Package volume translates between the paths a user sees for directories on
// mounted volumes and the paths the OS currently mounts them at.
//
// A display path names a volume by its OS display name (e.g. "/Volumes/MyDisk/Shows")
// while the actual path uses whatever folder the volume is mounted under right
// now (e.g. "/Volumes/MyDisk-1/Shows" after a mount conflict). Display paths are
// stable across sessions and are what callers should record; actual paths are
// what callers should do I/O on.
package volume

import (
	"context"
)

// Volume describes one currently mounted volume.
type Volume struct {
	DisplayName string `yaml:"display_name"`
	MountRoot   Path   `yaml:"mount_root"`
}

// Folder is the raw mount folder name, which may differ from DisplayName.
func (v Volume) Folder() string {
	return v.MountRoot.Last()
}

// Lookup is the mount table collaborator. Implementations must query the OS
// on every call; mount state can change between any two calls.
type Lookup interface {
	// Volumes returns every volume mounted under the volume container in the
	// order the OS enumerates them.
	Volumes(ctx context.Context) ([]Volume, error)

	// DisplayName returns the human display name of the volume mounted at
	// mountRoot, independent of its folder name.
	DisplayName(ctx context.Context, mountRoot Path) (string, error)
}

// ResolvedLocation pairs the path to do I/O on with the path to record. The
// two are computed together and are never assumed to be equal.
type ResolvedLocation struct {
	ActualPath  Path `yaml:"actual_path"`
	DisplayPath Path `yaml:"display_path"`
}
