package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"rtlpatch/internal/patch"
)

// ManifestName is the project manifest file looked up from the working
// directory upward.
const ManifestName = "rtlpatch.toml"

// PatchConfig is the [patch] section of rtlpatch.toml. Zero values mean
// "use the built-in default".
type PatchConfig struct {
	ElseLookahead    int      `toml:"else_lookahead"`
	DefaultLoopBound int      `toml:"default_loop_bound"`
	ClockNames       []string `toml:"clock_names"`
	HintsFile        string   `toml:"hints_file"`
}

// Manifest is a parsed rtlpatch.toml.
type Manifest struct {
	Patch PatchConfig `toml:"patch"`

	// Dir is the directory the manifest was loaded from.
	Dir string `toml:"-"`
}

// FindManifest walks up from startDir to locate rtlpatch.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// LoadManifest parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// LoadOptions resolves pipeline options for startDir: manifest values when a
// manifest is found, built-in defaults otherwise. The hints file is NOT
// loaded here; HintsPath carries the resolved path for the caller.
func LoadOptions(startDir string) (patch.Options, string, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return patch.Options{}, "", err
	}

	m, err := LoadManifest(path)
	if err != nil {
		return patch.Options{}, "", err
	}

	opts := patch.Options{
		ElseLookahead:    m.Patch.ElseLookahead,
		DefaultLoopBound: m.Patch.DefaultLoopBound,
		ClockNames:       m.Patch.ClockNames,
	}

	hintsPath := m.Patch.HintsFile
	if hintsPath != "" && !filepath.IsAbs(hintsPath) {
		hintsPath = filepath.Join(m.Dir, hintsPath)
	}
	return opts, hintsPath, nil
}
