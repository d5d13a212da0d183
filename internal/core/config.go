package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hay-kot/voldir/internal/volume"
	"github.com/rs/zerolog/log"
)

const (
	EnvPrefix = "VOLDIR_"

	DefaultMediaDirectory = "Media"
)

// Flags are the global CLI flags shared by every command.
type Flags struct {
	LogLevel       string
	ConfigFilePath string
	Container      string
}

type ConfigFile struct {
	// Container is the directory external volumes are mounted under.
	Container string `yaml:"container"`
	// MediaDirectory is the leaf directory name appended to picked folders.
	MediaDirectory string `yaml:"media_directory"`
	// DisplayPath is a previously recorded display path. voldir never writes it.
	DisplayPath string `yaml:"display_path"`

	ConfigDir string `yaml:"-"`
}

func defaultConfig() ConfigFile {
	return ConfigFile{
		Container:      volume.SystemContainer(),
		MediaDirectory: DefaultMediaDirectory,
	}
}

// SetupEnv loads the configuration at cfgpath. A missing file is not an
// error; defaults are used. Flags override file values.
func SetupEnv(flags *Flags) (ConfigFile, error) {
	cfg := defaultConfig()

	absolutePath, err := filepath.Abs(flags.ConfigFilePath)
	if err != nil {
		return cfg, err
	}
	cfg.ConfigDir = filepath.Dir(absolutePath)

	data, err := os.ReadFile(absolutePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("path", absolutePath).Msg("no config file, using defaults")
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", absolutePath, err)
		}
	}

	if flags.Container != "" {
		cfg.Container = flags.Container
	}

	pr := PathResolver{configDir: cfg.ConfigDir}

	cfg.Container, err = pr.Resolve(cfg.Container)
	if err != nil {
		return cfg, err
	}

	if cfg.DisplayPath != "" {
		cfg.DisplayPath, err = pr.Resolve(cfg.DisplayPath)
		if err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

func (c ConfigFile) Validate() error {
	if c.Container == "" {
		return errors.New("container must not be empty")
	}

	if c.MediaDirectory == "" {
		return errors.New("media_directory must not be empty")
	}

	if strings.ContainsAny(c.MediaDirectory, `/\`) || c.MediaDirectory == "." || c.MediaDirectory == ".." {
		return fmt.Errorf("media_directory must be a single directory name, got %q", c.MediaDirectory)
	}

	return nil
}

// ContainerPath returns the volume container as a path.
func (c ConfigFile) ContainerPath() volume.Path {
	return volume.ParsePath(c.Container)
}

// StoredDisplayPath returns the recorded display path, if any.
func (c ConfigFile) StoredDisplayPath() (volume.Path, bool) {
	if c.DisplayPath == "" {
		return volume.Path{}, false
	}
	return volume.ParsePath(c.DisplayPath), true
}
