package processing

import (
	"fmt"
	"maps"
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
	"gopkg.in/yaml.v3"
)

// LoadState builds the shared storage for a run from an optional YAML state
// file and key overrides. Overrides win over file values.
func LoadState(stateFile string, overrides map[string]any) (*api.GlobalStorage, error) {
	var values map[string]any
	if stateFile != "" {
		gs, err := api.LoadGlobalStorage(stateFile)
		if err != nil {
			return nil, err
		}
		values = gs.Snapshot()
	}
	return api.NewGlobalStorage(MergeContext(values, overrides)), nil
}

// ParseOverrides parses key=value pairs. Values are decoded as YAML, so
// numbers, booleans and flow lists keep their type.
func ParseOverrides(pairs []string) (map[string]any, error) {
	overrides := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: expected key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decoding override %q: %w", key, err)
		}
		if value == nil {
			value = raw
		}
		overrides[key] = value
	}
	return overrides, nil
}

// MergeContext performs a shallow merge of local over global.
// Local keys override global keys at the top level.
func MergeContext(global, local map[string]any) map[string]any {
	merged := make(map[string]any, len(global)+len(local))
	maps.Copy(merged, global)
	maps.Copy(merged, local)
	return merged
}
