package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set by build flags.
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "install-jobs %s (%s)\n", version, commit)
	},
}
