package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sampturned/Dimas/pkg/sysexec"
)

// fixCommands defines fix commands for each prerequisite. Ubuntu/apt is the
// only supported platform.
var fixCommands = map[string]*FixCommand{
	IDPython3: {
		Description: "Install Python via apt",
		Command:     "sudo apt-get install -y python3",
		Sudo:        true,
	},
	IDVenv: {
		Description: "Install the venv module via apt",
		Command:     "sudo apt-get install -y python3-venv",
		Sudo:        true,
	},
	IDAptGet: {
		Description: "apt-get ships with Ubuntu; this host is not supported",
		Command:     "",
		Sudo:        false,
	},
}

// GetFixCommand returns the fix command for a prerequisite, or nil.
func GetFixCommand(checkID string) *FixCommand {
	fix, ok := fixCommands[checkID]
	if !ok || fix.Command == "" {
		return nil
	}
	return fix
}

// Fixer runs fix commands.
type Fixer struct {
	executor sysexec.Executor
}

// NewFixer creates a Fixer with the real executor.
func NewFixer() *Fixer {
	return &Fixer{executor: sysexec.New()}
}

// NewFixerWithExecutor creates a Fixer with a custom executor (for testing).
func NewFixerWithExecutor(exec sysexec.Executor) *Fixer {
	return &Fixer{executor: exec}
}

// RunFix executes a fix command through the shell.
func (f *Fixer) RunFix(ctx context.Context, fix *FixCommand) error {
	if fix == nil || fix.Command == "" {
		return fmt.Errorf("no fix command available")
	}

	output, err := f.executor.CombinedOutput(ctx, "sh", "-c", fix.Command)
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("fix failed: %s", msg)
		}
		return fmt.Errorf("fix failed: %w", err)
	}
	return nil
}
