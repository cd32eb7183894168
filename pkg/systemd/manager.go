package systemd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sampturned/Dimas/pkg/sysexec"
)

// unitFileMode lets systemd read the unit without granting anything further.
const unitFileMode = 0644

// Manager installs unit files and drives systemctl.
type Manager struct {
	// UnitDir is the directory units are written to.
	UnitDir string

	executor sysexec.Executor
}

// NewManager creates a Manager targeting the given unit directory.
func NewManager(unitDir string) *Manager {
	return &Manager{UnitDir: unitDir, executor: sysexec.New()}
}

// NewManagerWithExecutor creates a Manager with a custom executor (for testing).
func NewManagerWithExecutor(unitDir string, exec sysexec.Executor) *Manager {
	return &Manager{UnitDir: unitDir, executor: exec}
}

// UnitPath returns the install path for a unit.
func (m *Manager) UnitPath(u *Unit) string {
	return filepath.Join(m.UnitDir, u.Name)
}

// WriteUnit installs the unit file. The write is skipped when the on-disk
// content already matches, so repeated runs leave an unchanged file behind.
// Returns whether the file was written.
func (m *Manager) WriteUnit(u *Unit) (bool, error) {
	desired, err := u.Render()
	if err != nil {
		return false, err
	}

	path := m.UnitPath(u)
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, desired) {
		return false, nil
	}

	if err := os.WriteFile(path, desired, unitFileMode); err != nil {
		return false, fmt.Errorf("failed to write unit file %s: %w", path, err)
	}
	return true, nil
}

// DiffUnit compares the installed unit file with the descriptor and returns a
// line diff, or an empty string when they already match. A missing file diffs
// against nothing.
func (m *Manager) DiffUnit(u *Unit) (string, error) {
	desired, err := u.Render()
	if err != nil {
		return "", err
	}

	current, err := os.ReadFile(m.UnitPath(u))
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read unit file: %w", err)
	}

	if bytes.Equal(current, desired) {
		return "", nil
	}
	return lineDiff(string(current), string(desired)), nil
}

// DaemonReload reloads the systemd manager configuration.
func (m *Manager) DaemonReload(ctx context.Context) error {
	out, err := m.executor.Run(ctx, "systemctl", "daemon-reload")
	if err != nil {
		return commandError("systemctl daemon-reload", out, err)
	}
	return nil
}

// Enable marks the unit for automatic start on boot. The unit is deliberately
// not started here; installation and first start are separate operator steps.
func (m *Manager) Enable(ctx context.Context, unitName string) error {
	out, err := m.executor.Run(ctx, "systemctl", "enable", unitName)
	if err != nil {
		return commandError("systemctl enable", out, err)
	}
	return nil
}

// IsEnabled returns systemctl's enablement state for the unit.
func (m *Manager) IsEnabled(ctx context.Context, unitName string) (string, error) {
	out, err := m.executor.Run(ctx, "systemctl", "is-enabled", unitName)
	state := strings.TrimSpace(out)
	if err != nil {
		// is-enabled exits non-zero for "disabled"; the output still names
		// the state, so only a silent failure is an error.
		if state == "" {
			return "", commandError("systemctl is-enabled", out, err)
		}
	}
	return state, nil
}

// IsActive returns systemctl's activity state for the unit.
func (m *Manager) IsActive(ctx context.Context, unitName string) (string, error) {
	out, err := m.executor.Run(ctx, "systemctl", "is-active", unitName)
	state := strings.TrimSpace(out)
	if err != nil {
		// Same contract as is-enabled: "inactive" is reported via exit code.
		if state == "" {
			return "", commandError("systemctl is-active", out, err)
		}
	}
	return state, nil
}

// lineDiff produces a minimal -/+ diff of two texts.
func lineDiff(current, desired string) string {
	var b strings.Builder

	currentLines := splitLines(current)
	desiredLines := splitLines(desired)

	currentSet := make(map[string]bool, len(currentLines))
	for _, l := range currentLines {
		currentSet[l] = true
	}
	desiredSet := make(map[string]bool, len(desiredLines))
	for _, l := range desiredLines {
		desiredSet[l] = true
	}

	for _, l := range currentLines {
		if !desiredSet[l] {
			b.WriteString("- " + l + "\n")
		}
	}
	for _, l := range desiredLines {
		if !currentSet[l] {
			b.WriteString("+ " + l + "\n")
		}
	}

	return b.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

// commandError formats a subprocess failure, preferring captured output over
// the bare exit status.
func commandError(what, output string, err error) error {
	if msg := strings.TrimSpace(output); msg != "" {
		return fmt.Errorf("%s failed: %s", what, msg)
	}
	return fmt.Errorf("%s failed: %w", what, err)
}
