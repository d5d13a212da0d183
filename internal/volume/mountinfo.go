package volume

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	procMountinfo = "/proc/self/mountinfo"
	devByLabel    = "/dev/disk/by-label"

	maxLinkHops = 8
)

var _ Lookup = &MountinfoLookup{}

// MountinfoLookup reads mounts from a Linux mountinfo table and names each
// volume after its filesystem label. Unlabelled volumes use the folder name.
type MountinfoLookup struct {
	fs        afero.Fs
	container Path
	mountinfo string
	labelDir  string
}

func NewMountinfoLookup(fs afero.Fs, container Path) *MountinfoLookup {
	return &MountinfoLookup{
		fs:        fs,
		container: container,
		mountinfo: procMountinfo,
		labelDir:  devByLabel,
	}
}

type mountEntry struct {
	mountPoint string
	source     string
}

// Volumes implements Lookup.
func (m *MountinfoLookup) Volumes(ctx context.Context) ([]Volume, error) {
	data, err := afero.ReadFile(m.fs, m.mountinfo)
	if err != nil {
		return nil, fmt.Errorf("failed to read mount table: %w", err)
	}

	lr, _ := m.fs.(afero.LinkReader)
	labels := m.labels(lr)

	var (
		volumes []Volume
		seen    = map[string]int{}
	)

	for _, e := range parseMountinfo(data) {
		root := ParsePath(e.mountPoint)
		if !root.HasPrefix(m.container) || root.Components() != m.container.Components()+1 {
			continue
		}

		name, ok := labels[canonicalDevice(lr, e.source)]
		if !ok {
			name = root.Last()
		}
		v := Volume{DisplayName: name, MountRoot: root}

		// a later mount on the same point hides the earlier one
		if i, dup := seen[e.mountPoint]; dup {
			volumes[i] = v
			continue
		}

		seen[e.mountPoint] = len(volumes)
		volumes = append(volumes, v)
	}

	return volumes, nil
}

// DisplayName implements Lookup.
func (m *MountinfoLookup) DisplayName(ctx context.Context, mountRoot Path) (string, error) {
	volumes, err := m.Volumes(ctx)
	if err != nil {
		return "", err
	}
	return displayNameFrom(volumes, mountRoot)
}

// labels maps canonical device paths to filesystem labels using the udev
// by-label symlinks. Filesystems that cannot read links yield no labels.
func (m *MountinfoLookup) labels(lr afero.LinkReader) map[string]string {
	labels := map[string]string{}

	if lr == nil {
		return labels
	}

	entries, err := afero.ReadDir(m.fs, m.labelDir)
	if err != nil {
		log.Debug().Err(err).Str("dir", m.labelDir).Msg("no filesystem labels available")
		return labels
	}

	for _, e := range entries {
		link := filepath.Join(m.labelDir, e.Name())
		target := canonicalDevice(lr, link)
		if target == link {
			continue
		}
		labels[target] = unescapeUdev(e.Name())
	}

	return labels
}

// canonicalDevice follows symlinks from dev so that aliases such as
// /dev/mapper/x or /dev/disk/by-uuid/... end at the same node as the
// by-label links. Paths that are not links are returned cleaned.
func canonicalDevice(lr afero.LinkReader, dev string) string {
	dev = filepath.Clean(dev)
	if lr == nil {
		return dev
	}

	for range maxLinkHops {
		target, err := lr.ReadlinkIfPossible(dev)
		if err != nil {
			break
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(dev), target)
		}
		dev = filepath.Clean(target)
	}

	return dev
}

// parseMountinfo extracts mount points and sources from proc mountinfo
// content. See proc(5) for the field layout.
func parseMountinfo(data []byte) []mountEntry {
	var entries []mountEntry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		sep := -1
		for i := 6; i < len(fields); i++ {
			if fields[i] == "-" {
				sep = i
				break
			}
		}
		if sep < 0 || sep+2 >= len(fields) {
			continue
		}

		entries = append(entries, mountEntry{
			mountPoint: unescapeOctal(fields[4]),
			source:     unescapeOctal(fields[sep+2]),
		})
	}

	return entries
}

// unescapeOctal decodes the \NNN escapes the kernel uses for whitespace and
// backslashes in mountinfo fields.
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescapeUdev decodes the \xNN escapes udev uses in by-label link names.
func unescapeUdev(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) && s[i+1] == 'x' {
			if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
