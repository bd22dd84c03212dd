package processing

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
	"gopkg.in/yaml.v3"
)

const moduleConfigExt = ".conf"

// DiscoverModuleConfigs walks dir for <name>.conf files and maps each module
// name to its path. When a name occurs more than once the shallowest file wins.
func DiscoverModuleConfigs(dir string) (map[string]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving module configuration directory: %w", err)
	}

	paths, err := collectConfigPaths(absDir)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(paths, func(a, b string) int {
		return pathDepth(a) - pathDepth(b)
	})

	configs := make(map[string]string, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), moduleConfigExt)
		if prev, ok := configs[name]; ok {
			slog.Debug("ignoring shadowed module configuration", "module", name, "path", p, "using", prev)
			continue
		}
		configs[name] = p
	}
	return configs, nil
}

// ApplyModuleConfigs fills the step sections a job leaves empty from the
// module configuration file named after the job. Inline sections win.
func ApplyModuleConfigs(jf *api.JobFile, configs map[string]string) error {
	for i := range jf.Jobs {
		job := &jf.Jobs[i]
		path, ok := configs[job.Name]
		if !ok {
			continue
		}

		module, err := loadModuleConfig(path)
		if err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}

		if job.Bootloader == nil {
			job.Bootloader = module.Bootloader
		}
		if job.Fstab == nil {
			job.Fstab = module.Fstab
		}
		if job.MakeAB == nil {
			job.MakeAB = module.MakeAB
		}
		if job.Options == nil {
			job.Options = module.Options
		}
		slog.Debug("applied module configuration", "job", job.Name, "path", path)
	}
	return nil
}

func loadModuleConfig(path string) (*api.StepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module configuration: %w", err)
	}
	var cfg api.StepConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing module configuration %s: %w", path, err)
	}
	return &cfg, nil
}

func collectConfigPaths(absDir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == moduleConfigExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory tree: %w", err)
	}
	return paths, nil
}

func pathDepth(p string) int {
	if p == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(p), "/") + 1
}
