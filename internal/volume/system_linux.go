//go:build linux

package volume

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/afero"
)

// SystemContainer returns the directory removable volumes mount under. udisks
// uses /run/media/$USER on some distributions and /media/$USER on others.
func SystemContainer() string {
	u, err := user.Current()
	if err != nil {
		return "/media"
	}

	runMedia := filepath.Join("/run/media", u.Username)
	if info, err := os.Stat(runMedia); err == nil && info.IsDir() {
		return runMedia
	}
	return filepath.Join("/media", u.Username)
}

// NewSystemLookup returns the mount table lookup for this OS.
func NewSystemLookup(fs afero.Fs, container Path) Lookup {
	return NewMountinfoLookup(fs, container)
}
