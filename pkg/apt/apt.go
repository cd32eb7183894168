// Package apt installs OS packages through apt-get.
package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/sampturned/Dimas/pkg/sysexec"
)

// nonInteractive suppresses debconf prompts during unattended installs.
var nonInteractive = []string{"DEBIAN_FRONTEND=noninteractive"}

// Installer runs apt-get commands on the host.
type Installer struct {
	executor sysexec.Executor
}

// NewInstaller creates an Installer with the real executor.
func NewInstaller() *Installer {
	return &Installer{executor: sysexec.New()}
}

// NewInstallerWithExecutor creates an Installer with a custom executor (for testing).
func NewInstallerWithExecutor(exec sysexec.Executor) *Installer {
	return &Installer{executor: exec}
}

// Update refreshes the package index.
func (i *Installer) Update(ctx context.Context) error {
	out, err := i.executor.RunWithEnv(ctx, nonInteractive, "apt-get", "update")
	if err != nil {
		return commandError("apt-get update", out, err)
	}
	return nil
}

// Install installs the given packages. The first failure aborts the whole
// install; nothing is retried.
func (i *Installer) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	args := append([]string{"install", "-y"}, packages...)
	out, err := i.executor.RunWithEnv(ctx, nonInteractive, "apt-get", args...)
	if err != nil {
		return commandError("apt-get install", out, err)
	}
	return nil
}

// Available reports whether apt-get exists on this host.
func (i *Installer) Available() bool {
	_, err := i.executor.LookPath("apt-get")
	return err == nil
}

// commandError formats a subprocess failure, preferring captured output over
// the bare exit status.
func commandError(what, output string, err error) error {
	if msg := strings.TrimSpace(output); msg != "" {
		return fmt.Errorf("%s failed: %s", what, msg)
	}
	return fmt.Errorf("%s failed: %w", what, err)
}
