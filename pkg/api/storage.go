package api

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys read from and written to the global storage.
const (
	KeyRootMountPoint = "rootMountPoint"
	KeyOptions        = "options"
	KeyPartitions     = "partitions"
	KeyBootloader     = "bootloader"
)

// Partition describes one entry of the partitions list.
type Partition struct {
	Device     string `yaml:"device"`
	FS         string `yaml:"fs"`
	MountPoint string `yaml:"mountPoint"`
}

// HasMountPoint reports whether any partition is mounted at mountPoint.
func HasMountPoint(partitions []Partition, mountPoint string) bool {
	for _, p := range partitions {
		if p.MountPoint == mountPoint {
			return true
		}
	}
	return false
}

// GlobalStorage is the installation state shared by all jobs of a run.
// Jobs run one at a time, so it is not safe for concurrent use.
type GlobalStorage struct {
	values map[string]any
}

// NewGlobalStorage returns a storage seeded with a copy of values.
func NewGlobalStorage(values map[string]any) *GlobalStorage {
	gs := &GlobalStorage{values: make(map[string]any, len(values))}
	maps.Copy(gs.values, values)
	return gs
}

// LoadGlobalStorage reads a YAML mapping into a new storage.
func LoadGlobalStorage(filename string) (*GlobalStorage, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}

	return NewGlobalStorage(values), nil
}

// Save writes the storage as a YAML mapping.
func (g *GlobalStorage) Save(filename string) error {
	data, err := yaml.Marshal(g.values)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Value returns the raw value stored under key.
func (g *GlobalStorage) Value(key string) (any, bool) {
	v, ok := g.values[key]
	return v, ok
}

// Contains reports whether key is present.
func (g *GlobalStorage) Contains(key string) bool {
	_, ok := g.values[key]
	return ok
}

// Insert sets key to value.
func (g *GlobalStorage) Insert(key string, value any) {
	g.values[key] = value
}

// Keys returns the stored keys in sorted order.
func (g *GlobalStorage) Keys() []string {
	return slices.Sorted(maps.Keys(g.values))
}

// Snapshot returns a shallow copy of all stored values.
func (g *GlobalStorage) Snapshot() map[string]any {
	return maps.Clone(g.values)
}

// String returns the value under key as a string. Missing or nil values are empty.
func (g *GlobalStorage) String(key string) string {
	v, ok := g.values[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// RootMountPoint returns the target mount point, or "" when unset.
func (g *GlobalStorage) RootMountPoint() string {
	return g.String(KeyRootMountPoint)
}

// Options returns the free-form kernel/boot options string.
func (g *GlobalStorage) Options() string {
	return g.String(KeyOptions)
}

// Bootloader returns the bootloader variant resolved by an earlier job, if any.
func (g *GlobalStorage) Bootloader() string {
	return strings.ToLower(g.String(KeyBootloader))
}

// Partitions decodes the partitions list. A missing key yields an empty list.
func (g *GlobalStorage) Partitions() ([]Partition, error) {
	v, ok := g.values[KeyPartitions]
	if !ok || v == nil {
		return nil, nil
	}
	if parts, ok := v.([]Partition); ok {
		return parts, nil
	}

	// Values loaded from YAML are generic maps; round-trip them through the codec.
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", KeyPartitions, err)
	}
	var parts []Partition
	if err := yaml.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyPartitions, err)
	}
	return parts, nil
}
