// Package config loads covtrace.toml, the per-project measurement
// configuration:
//
//	[data]
//	file = ".covtrace"
//
//	[trace]
//	include = ["src"]
//	omit = ["src/vendor"]
//	returnless = ["native/xmlshim"]
//	max_depth = 0
//
//	[debug]
//	log = "-"
//	level = "off"
//
// Every section is optional; a missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"covtrace/internal/covlog"
)

// FileName is the configuration file looked up from the working directory
// towards the filesystem root.
const FileName = "covtrace.toml"

// DefaultDataFile is the data file used when [data].file is not set.
const DefaultDataFile = ".covtrace"

// Config is the parsed covtrace.toml.
type Config struct {
	Data  Data  `toml:"data"`
	Trace Trace `toml:"trace"`
	Debug Debug `toml:"debug"`
}

// Data configures where collected coverage lands.
type Data struct {
	File string `toml:"file"`
}

// Trace configures the measurement scope and the tracer core.
type Trace struct {
	Include []string `toml:"include"`
	Omit    []string `toml:"omit"`
	// Returnless names host components (by unit-identifier substring) that
	// deliver exception events without the matching return.
	Returnless []string `toml:"returnless"`
	MaxDepth   int      `toml:"max_depth"`
}

// Debug configures the tracer bookkeeping log.
type Debug struct {
	Log   string `toml:"log"`   // output path, "-" for stderr
	Level string `toml:"level"` // off|events|state
}

// Default returns the configuration used when no covtrace.toml exists.
func Default() Config {
	return Config{
		Data:  Data{File: DefaultDataFile},
		Debug: Debug{Level: covlog.LevelOff.String()},
	}
}

// Find walks from startDir towards the root looking for covtrace.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the configuration at path, filling in defaults for absent
// values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, keys[0].String())
	}
	if cfg.Data.File == "" {
		cfg.Data.File = DefaultDataFile
	}
	if _, err := covlog.ParseLevel(cfg.Debug.Level); err != nil {
		return Config{}, fmt.Errorf("%s: [debug].level: %w", path, err)
	}
	if cfg.Trace.MaxDepth < 0 {
		return Config{}, fmt.Errorf("%s: [trace].max_depth must not be negative", path)
	}
	return cfg, nil
}

// LoadOrDefault finds and loads the nearest covtrace.toml above startDir.
// Without one it returns the defaults and an empty root.
func LoadOrDefault(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, filepath.Dir(path), nil
}

// DataPath resolves the configured data file against the configuration
// root. An absolute [data].file wins; with no root the path is returned
// as configured.
func (c Config) DataPath(root string) string {
	if filepath.IsAbs(c.Data.File) || root == "" {
		return c.Data.File
	}
	return filepath.Join(root, c.Data.File)
}
