package volume

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"
)

var _ Lookup = &DiskutilLookup{}

// DiskutilLookup enumerates the container like DirLookup but asks diskutil
// for each volume's name, which survives mount folder renames such as
// "MyDisk 1".
type DiskutilLookup struct {
	dirs *DirLookup
	info func(ctx context.Context, mount string) ([]byte, error)
}

func NewDiskutilLookup(fs afero.Fs, container Path) *DiskutilLookup {
	return &DiskutilLookup{
		dirs: NewDirLookup(fs, container),
		info: diskutilInfo,
	}
}

func diskutilInfo(ctx context.Context, mount string) ([]byte, error) {
	return exec.CommandContext(ctx, "diskutil", "info", mount).Output()
}

// Volumes implements Lookup. Names are fetched concurrently; the result keeps
// the container's enumeration order.
func (d *DiskutilLookup) Volumes(ctx context.Context) ([]Volume, error) {
	volumes, err := d.dirs.Volumes(ctx)
	if err != nil {
		return nil, err
	}

	return iter.Map(volumes, func(v *Volume) Volume {
		name, err := d.DisplayName(ctx, v.MountRoot)
		if err != nil {
			log.Debug().Err(err).Str("mount", v.MountRoot.String()).Msg("falling back to folder name")
			return *v
		}
		return Volume{DisplayName: name, MountRoot: v.MountRoot}
	}), nil
}

// DisplayName implements Lookup.
func (d *DiskutilLookup) DisplayName(ctx context.Context, mountRoot Path) (string, error) {
	out, err := d.info(ctx, mountRoot.OSPath())
	if err != nil {
		return "", fmt.Errorf("diskutil info %s: %w", mountRoot, err)
	}

	name, ok := parseDiskutilVolumeName(out)
	if !ok {
		return "", fmt.Errorf("diskutil reported no volume name for %s", mountRoot)
	}
	return name, nil
}

// parseDiskutilVolumeName extracts the "Volume Name:" field from
// `diskutil info` output.
func parseDiskutilVolumeName(out []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, found := strings.CutPrefix(line, "Volume Name:")
		if !found {
			continue
		}

		value = strings.TrimSpace(value)
		if value == "" || value == "Not applicable (no file system)" {
			return "", false
		}
		return value, true
	}
	return "", false
}
