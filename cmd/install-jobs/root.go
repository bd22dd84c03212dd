package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/systemstart/install-jobs/pkg/logging"
)

const envPrefix = "INSTALL_JOBS_"

var (
	loggingType string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "install-jobs",
	Short: "Run installer jobs against a target root",
	Long: `install-jobs runs the bootloader, fstab and disk image jobs of an OS
installation against a mounted target root.

Jobs are read from a YAML or TOML job file and run one after another with a
shared installation state. The first failing job stops the run.

Flags can also be set through INSTALL_JOBS_<FLAG> environment variables,
for example INSTALL_JOBS_LOG_LEVEL=debug. A .env file in the working
directory is loaded first.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&loggingType, "logging-type", logging.Tint, "logging type: json, text or tint")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd, stepCmd, validateCmd, optionsCmd, versionCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := includeEnv(); err != nil {
		return err
	}
	if err := applyEnv(cmd.Flags()); err != nil {
		return withExitCode(exitUsage, err)
	}
	if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
		return withExitCode(exitLoggingSetupFailed, err)
	}
	return nil
}

// applyEnv sets every flag not given on the command line from its
// environment variable, if present.
func applyEnv(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		v, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}
		if setErr := flags.Set(f.Name, v); setErr != nil {
			err = fmt.Errorf("invalid %s: %w", envName(f.Name), setErr)
		}
	})
	return err
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
