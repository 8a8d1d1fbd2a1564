// Package config loads the optional pascalc.yaml project file that sits
// next to a source program, controlling diagnostic color and whether
// warnings are promoted to a nonzero exit code.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileName is the project config file pascalc looks for beside the
// source file being compiled.
const FileName = "pascalc.yaml"

// Config holds the settings pascalc.yaml may specify. The zero value has
// color off; the driver's built-in defaults come from Default().
type Config struct {
	Color            bool `yaml:"color"`
	WarningsAsErrors bool `yaml:"warningsAsErrors"`
}

// Default returns the driver's built-in defaults, used when no
// pascalc.yaml is present.
func Default() Config {
	return Config{Color: true, WarningsAsErrors: false}
}

// Load reads pascalc.yaml from the directory containing sourcePath. A
// missing file is not an error: Default() is returned unchanged. Any
// other read or parse failure is returned as an error.
func Load(sourcePath string) (Config, error) {
	cfg := Default()

	path := filepath.Join(filepath.Dir(sourcePath), FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads an explicitly named config file. Unlike Load, a missing
// file here is an error: the caller asked for this exact file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
