package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/voldir/internal/volume"
)

// PathResolver turns user supplied paths (relative, or starting with '~')
// into absolute paths before they reach the volume resolver.
type PathResolver struct {
	configDir string // relative paths are rooted here when set
}

func NewPathResolver(configDir string) PathResolver {
	return PathResolver{configDir: configDir}
}

func (pr PathResolver) Resolve(ip string) (string, error) {
	if ip == "~" || strings.HasPrefix(ip, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		ip = filepath.Join(homeDir, strings.TrimPrefix(ip, "~"))
	}

	if filepath.IsAbs(ip) {
		return filepath.Clean(ip), nil
	}

	if pr.configDir != "" {
		return filepath.Join(pr.configDir, ip), nil
	}

	return filepath.Abs(ip)
}

// ResolvePath is Resolve returning a volume.Path.
func (pr PathResolver) ResolvePath(ip string) (volume.Path, error) {
	abs, err := pr.Resolve(ip)
	if err != nil {
		return volume.Path{}, err
	}
	return volume.ParsePath(abs), nil
}
