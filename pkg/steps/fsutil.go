package steps

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// mkdirP creates path and any missing parents. An existing directory is not an error.
func mkdirP(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// writeLines replaces filename with lines, each terminated by a newline.
func writeLines(filename string, lines ...string) error {
	if err := os.WriteFile(filename, []byte(joinLines(lines)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// appendLines appends lines to filename, creating it if needed. Existing content is kept.
func appendLines(filename string, lines ...string) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}

	_, writeErr := f.WriteString(joinLines(lines))

	if closeErr := f.Close(); closeErr != nil {
		if writeErr != nil {
			return fmt.Errorf("appending to %s: %w", filename, writeErr)
		}
		return fmt.Errorf("closing %s: %w", filename, closeErr)
	}
	if writeErr != nil {
		return fmt.Errorf("appending to %s: %w", filename, writeErr)
	}
	return nil
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyTree copies src into a directory of the same base name under dstParent,
// matching "cp -r src dstParent".
func copyTree(src, dstParent string) error {
	dst := filepath.Join(dstParent, filepath.Base(filepath.Clean(src)))
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		return copyEntry(dst, rel, path, d)
	})
	if err != nil {
		return fmt.Errorf("copying tree: %w", err)
	}
	return nil
}

func copyEntry(dst, rel, srcPath string, d fs.DirEntry) error {
	target := filepath.Join(dst, rel)

	if d.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.WriteFile(target, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
