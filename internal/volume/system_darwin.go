//go:build darwin

package volume

import "github.com/spf13/afero"

// SystemContainer returns the directory removable volumes mount under.
func SystemContainer() string {
	return DefaultContainer
}

// NewSystemLookup returns the mount table lookup for this OS.
func NewSystemLookup(fs afero.Fs, container Path) Lookup {
	return NewDiskutilLookup(fs, container)
}
