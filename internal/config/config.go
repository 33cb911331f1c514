// Package config loads default option values for the command line tool from
// a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File holds the settings read from a config file. Pointer fields
// distinguish "unset" from false.
type File struct {
	Recursive *bool  `yaml:"recursive"`
	Overwrite *bool  `yaml:"overwrite"`
	Verbose   *bool  `yaml:"verbose"`
	Codec     string `yaml:"codec"`
	History   string `yaml:"history"`
	Format    string `yaml:"format"`
}

// DefaultPath returns $XDG_CONFIG_HOME/pdf-burger/config.yaml, falling back
// to the platform user config directory. It returns "" when neither is
// known.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "pdf-burger", "config.yaml")
}

// Load reads the config file at path. An empty path loads DefaultPath, and
// a missing default file yields an empty File. A missing explicit file is
// an error.
func Load(path string) (File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return File{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return f, nil
}

// Bool returns *p, or def when p is nil.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
