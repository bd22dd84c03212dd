package command

import (
	"context"
	"fmt"
)

const chrootBinary = "chroot"

// TargetRunner executes commands inside the target root through chroot.
type TargetRunner struct {
	root  string
	inner Runner
}

// NewTargetRunner wraps inner so that every command runs with root as "/".
func NewTargetRunner(root string, inner Runner) *TargetRunner {
	if inner == nil {
		inner = NewHostRunner()
	}
	return &TargetRunner{root: root, inner: inner}
}

// Root returns the directory commands are confined to.
func (r *TargetRunner) Root() string {
	return r.root
}

// Run executes command inside the target root.
func (r *TargetRunner) Run(ctx context.Context, command string, args ...string) (Result, error) {
	if r.root == "" {
		return Result{}, fmt.Errorf("no target root for %s", command)
	}
	chrootArgs := make([]string, 0, len(args)+2)
	chrootArgs = append(chrootArgs, r.root, command)
	chrootArgs = append(chrootArgs, args...)
	return r.inner.Run(ctx, chrootBinary, chrootArgs...)
}

var _ Runner = (*TargetRunner)(nil)
