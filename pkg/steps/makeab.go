package steps

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/install-jobs/pkg/api"
)

const makeABTitle = "Bad make-ab configuration"

type makeABStep struct {
	name    string
	entries []api.ImageEntry
}

type abImage struct {
	file string
	size string
}

// NewMakeABStep creates the step that turns target images into A/B images.
// A nil entries slice means the step has no configuration.
func NewMakeABStep(name string, entries []api.ImageEntry) Step {
	return &makeABStep{name: name, entries: entries}
}

func (s *makeABStep) Name() string { return s.name }

func (s *makeABStep) PrettyName() string { return "Filling up filesystems." }

func (s *makeABStep) Checks() []Check {
	return append(rootChecks(), ConfigurationPresent(api.StepTypeMakeAB, s.entries != nil))
}

func (s *makeABStep) Run(ctx *StepContext) error {
	images, f := s.resolve(ctx.Storage.RootMountPoint())
	if f != nil {
		ctx.logger().Warn("make-ab source missing", "message", f.Message)
		return f
	}

	for _, img := range images {
		if _, err := ctx.Exec(ctx.Script("make-ab"), img.file, img.size); err != nil {
			return err
		}
	}
	return nil
}

// resolve expands every entry against root. No command runs unless every
// source exists.
func (s *makeABStep) resolve(root string) ([]abImage, *Failure) {
	var images []abImage
	for _, entry := range s.entries {
		files, err := expandImage(root, entry.File)
		if err != nil {
			return nil, newFailure(KindMissingConfiguration, makeABTitle, "%v", err)
		}
		if len(files) == 0 {
			return nil, newFailure(KindMissingConfiguration, makeABTitle,
				`The source file "%s" does not exist`, filepath.Join(root, entry.File))
		}
		for _, file := range files {
			images = append(images, abImage{file: file, size: entry.Size})
		}
	}
	return images, nil
}

// expandImage returns the absolute paths that file names under root. Patterns
// are matched with doublestar and returned in sorted order.
func expandImage(root, file string) ([]string, error) {
	if !strings.ContainsAny(file, "*?[{") {
		abs := filepath.Join(root, file)
		if _, err := os.Stat(abs); err != nil {
			return nil, nil
		}
		return []string{abs}, nil
	}

	pattern := strings.TrimPrefix(path.Clean(filepath.ToSlash(file)), "/")
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", file, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(root, filepath.FromSlash(m)))
	}
	slices.Sort(files)
	return files, nil
}
