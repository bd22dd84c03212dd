package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadJobFile reads a job file, sets Dir/FilePath, and validates it.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func LoadJobFile(filename string) (*JobFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	jf, err := ParseJobFile(data, isTOML(filename))
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	jf.FilePath = absPath
	jf.Dir = filepath.Dir(absPath)

	if err := jf.Validate(); err != nil {
		return nil, fmt.Errorf("validating job file %s: %w", filename, err)
	}

	return jf, nil
}

// ParseJobFile decodes a job file without validating it.
//
// TOML is read into a generic tree and re-encoded as YAML, so both formats
// share one set of field names and decoding rules.
func ParseJobFile(data []byte, asTOML bool) (*JobFile, error) {
	if asTOML {
		var tree map[string]any
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing job file: %w", err)
		}
		converted, err := yaml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("converting job file: %w", err)
		}
		data = converted
	}

	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	return &jf, nil
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}
