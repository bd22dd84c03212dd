package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systemstart/install-jobs/pkg/processing"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a job file without running it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jf, err := processing.LoadJobs(jobsFile)
		if err != nil {
			return withExitCode(exitLoadJobFileFailed, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d job(s)\n", jf.FilePath, len(jf.Jobs))
		for i, job := range jf.Jobs {
			fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, job.Name, job.Type)
		}
		return nil
	},
}

func init() {
	addJobsFlag(validateCmd)
}
