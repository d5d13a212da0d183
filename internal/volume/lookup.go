package volume

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

var _ Lookup = &DirLookup{}

// DirLookup treats every directory directly under the container as a mounted
// volume and uses its folder name as the display name.
type DirLookup struct {
	fs        afero.Fs
	container Path
}

func NewDirLookup(fs afero.Fs, container Path) *DirLookup {
	return &DirLookup{fs: fs, container: container}
}

// Volumes implements Lookup.
func (d *DirLookup) Volumes(ctx context.Context) ([]Volume, error) {
	entries, err := afero.ReadDir(d.fs, d.container.OSPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read volume container %s: %w", d.container, err)
	}

	volumes := make([]Volume, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}

		// the boot volume shows up as a symlink to /
		if !e.IsDir() && e.Mode()&os.ModeSymlink == 0 {
			continue
		}

		volumes = append(volumes, Volume{
			DisplayName: e.Name(),
			MountRoot:   d.container.Join(e.Name()),
		})
	}

	return volumes, nil
}

// DisplayName implements Lookup.
func (d *DirLookup) DisplayName(ctx context.Context, mountRoot Path) (string, error) {
	if _, err := d.fs.Stat(mountRoot.OSPath()); err != nil {
		return "", fmt.Errorf("volume %s is not mounted: %w", mountRoot, err)
	}
	return mountRoot.Last(), nil
}

// displayNameFrom finds mountRoot in volumes.
func displayNameFrom(volumes []Volume, mountRoot Path) (string, error) {
	for _, v := range volumes {
		if v.MountRoot.Equal(mountRoot) {
			return v.DisplayName, nil
		}
	}
	return "", fmt.Errorf("volume %s is not mounted", mountRoot)
}
