package steps

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const cmdlineMarker = "cmdline.txt"

// kernelCmdline builds the kernel command line: the first line of the
// command-line source followed by the options from the global storage.
func kernelCmdline(ctx *StepContext) (string, error) {
	f, err := os.Open(ctx.Settings.CmdlineSource)
	if err != nil {
		return "", fmt.Errorf("reading kernel command line: %w", err)
	}
	defer f.Close()

	var first string
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		first = strings.TrimRight(sc.Text(), "\r")
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading kernel command line: %w", err)
	}

	return first + " " + ctx.Storage.Options(), nil
}

// writeCmdlineMarker writes the command line into the target root for detection.
func writeCmdlineMarker(root, cmdline string) error {
	return writeLines(filepath.Join(root, cmdlineMarker), cmdline)
}
