// Package config loads the ambient configuration shared by every command in
// internal/maincmd: the diagnostic error ceiling, the recovery flag and color
// preference. Precedence, lowest to highest: built-in defaults, an optional
// slang.yaml project file, then SLANG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the optional project file looked up in the
// current working directory by Load.
const ProjectFile = "slang.yaml"

// Color selects whether diagnostic output is colorized.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Config holds every knob a command needs that isn't specific to the files
// it was invoked on.
type Config struct {
	// MaxErrors caps the number of Error-severity diagnostics a diag.Engine
	// collects; past the cap the engine records one "too many errors"
	// diagnostic and discards every further emission.
	MaxErrors int `yaml:"max_errors" env:"SLANG_MAX_ERRORS"`

	// Recover is copied into diag.Engine.Recovery. The parser and analyzer do
	// not read that flag: they keep going past an error whatever its value.
	Recover bool `yaml:"recover" env:"SLANG_RECOVER"`

	// Color controls whether internal/maincmd wraps its diagnostic Reporter
	// with ANSI color codes. "auto" defers to whether stderr is a terminal.
	Color Color `yaml:"color" env:"SLANG_COLOR"`
}

// Default returns the built-in defaults, before any file or environment
// override is applied.
func Default() Config {
	return Config{
		MaxErrors: 100,
		Recover:   false,
		Color:     ColorAuto,
	}
}

// Load builds a Config starting from Default, merging dir/slang.yaml if it
// exists, then applying SLANG_* environment overrides. A missing project
// file is not an error; a malformed one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := dir + string(os.PathSeparator) + ProjectFile
	if dir == "" {
		path = ProjectFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}
