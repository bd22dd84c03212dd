package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/options"
)

var (
	optionsJob        string
	optionsShowHidden bool
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the kernel option tree of an options job",
	Long: `Show the kernel option tree of an options job with the selections of
the job file applied, followed by the resulting options string.

Examples:
  install-jobs options --jobs jobs.yaml
  install-jobs options --jobs jobs.yaml --job kernel-options --set partitions="[{mountPoint: /data}]"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jf, storage, err := loadJobsAndState()
		if err != nil {
			return err
		}

		cfg, err := findOptionsConfig(jf, optionsJob)
		if err != nil {
			return withExitCode(exitUsage, err)
		}

		partitions, err := storage.Partitions()
		if err != nil {
			return withExitCode(exitLoadStateFailed, err)
		}

		tree, unmatched := options.FromConfig(cfg, api.HasMountPoint(partitions, "/data"))
		printTree(cmd.OutOrStdout(), tree, optionsShowHidden)
		printUnmatched(cmd.ErrOrStderr(), unmatched)
		return nil
	},
}

func init() {
	addJobsFlag(optionsCmd)
	addStateFlags(optionsCmd)
	optionsCmd.Flags().StringVar(&optionsJob, "job", "", "name of the options job (default: first options job)")
	optionsCmd.Flags().BoolVar(&optionsShowHidden, "show-hidden", false, "include hidden options")
}

func findOptionsConfig(jf *api.JobFile, name string) (*api.OptionsConfig, error) {
	for _, job := range jf.Jobs {
		if job.Type != api.StepTypeOptions || (name != "" && job.Name != name) {
			continue
		}
		if job.Options == nil {
			return nil, fmt.Errorf("job %q has no options configuration", job.Name)
		}
		return job.Options, nil
	}
	if name != "" {
		return nil, fmt.Errorf("no options job named %q", name)
	}
	return nil, fmt.Errorf("job file has no options job")
}

func printTree(w io.Writer, tree *options.Tree, showHidden bool) {
	tree.Walk(func(it *options.Item, depth int) bool {
		if !showHidden && hidden(it) {
			return true
		}
		label := it.Name()
		if it.IsOption() && it.Operation() != it.Name() {
			label += " (" + it.Operation() + ")"
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), checkMark(it.State()), label)
		return true
	})
	fmt.Fprintf(w, "\n%s\n", tree.CommandLine())
}

func printUnmatched(w io.Writer, names []string) {
	for _, name := range names {
		slog.Warn("no editable option for input", "option", name)
		fmt.Fprintf(w, "no editable option for input: %s\n", name)
	}
}

// hidden reports whether it or one of its groups is hidden.
func hidden(it *options.Item) bool {
	for ; it != nil; it = it.Parent() {
		if it.Hidden() {
			return true
		}
	}
	return false
}

func checkMark(s options.CheckState) string {
	switch s {
	case options.Checked:
		return "[x]"
	case options.PartiallyChecked:
		return "[-]"
	default:
		return "[ ]"
	}
}
