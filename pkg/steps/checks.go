package steps

import (
	"fmt"
	"os"
)

// Check is a precondition gate. It returns nil when the step may proceed.
type Check func(ctx *StepContext) *Failure

// RootMountPointSet fails when the root mount point is absent or empty.
func RootMountPointSet(ctx *StepContext) *Failure {
	if ctx.Storage.RootMountPoint() != "" {
		return nil
	}
	ctx.logger().Warn("No mount point for root partition")
	return newFailure(KindMissingState, "No mount point for root partition",
		`globalstorage does not contain a "rootMountPoint" key.`)
}

// RootMountPointExists fails when the root mount point is not on disk.
func RootMountPointExists(ctx *StepContext) *Failure {
	root := ctx.Storage.RootMountPoint()
	if _, err := os.Stat(root); err == nil {
		return nil
	}
	ctx.logger().Warn("Bad root mount point", "rootMountPoint", root)
	return newFailure(KindInvalidMountPoint, "Bad mount point for root partition",
		`rootMountPoint is "%s", which does not exist.`, root)
}

// ConfigurationPresent returns a check that fails when a step has no
// configuration section.
func ConfigurationPresent(stepName string, present bool) Check {
	return func(ctx *StepContext) *Failure {
		if present {
			return nil
		}
		ctx.logger().Warn("missing step configuration", "step", stepName)
		return newFailure(KindMissingConfiguration, fmt.Sprintf("Bad %s configuration", stepName),
			"There is no configuration information.")
	}
}

func rootChecks() []Check {
	return []Check{RootMountPointSet, RootMountPointExists}
}
