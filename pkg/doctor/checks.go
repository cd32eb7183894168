package doctor

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sampturned/Dimas/pkg/sysexec"
)

// versionRegex extracts a dotted version from tool output.
var versionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9]+)?)`)

// checkTool checks that a tool is installed and reports its version.
func checkTool(ctx context.Context, exec sysexec.Executor, id, name, desc string, versionArgs []string, fix *FixCommand) Check {
	check := Check{
		ID:          id,
		Name:        name,
		Description: desc,
		FixCommand:  fix,
	}

	path, err := exec.LookPath(id)
	if err != nil {
		check.Status = StatusMissing
		check.Message = "not installed"
		return check
	}

	output, err := exec.Run(ctx, path, versionArgs...)
	if err != nil {
		// Tool exists but version probing failed; still usable.
		check.Status = StatusOK
		check.Message = "installed (version unknown)"
		return check
	}

	check.Status = StatusOK
	if version := extractVersion(output); version != "" {
		check.Message = version
	} else {
		check.Message = "installed"
	}
	return check
}

// extractVersion pulls a version string out of command output.
func extractVersion(output string) string {
	matches := versionRegex.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CheckAptGet verifies the system package manager is present.
func CheckAptGet(ctx context.Context, exec sysexec.Executor) Check {
	return checkTool(ctx, exec, IDAptGet, "apt-get", "Installs OS packages",
		[]string{"--version"}, GetFixCommand(IDAptGet))
}

// CheckPython3 verifies the Python interpreter is present.
func CheckPython3(ctx context.Context, exec sysexec.Executor) Check {
	return checkTool(ctx, exec, IDPython3, "python3", "Runs the bot and creates its venv",
		[]string{"--version"}, GetFixCommand(IDPython3))
}

// CheckVenvModule verifies python3 can create virtual environments.
func CheckVenvModule(ctx context.Context, exec sysexec.Executor) Check {
	check := Check{
		ID:          IDVenv,
		Name:        "venv module",
		Description: "Creates isolated Python environments",
		FixCommand:  GetFixCommand(IDVenv),
	}

	if _, err := exec.LookPath("python3"); err != nil {
		check.Status = StatusMissing
		check.Message = "python3 not installed"
		return check
	}

	if _, err := exec.Run(ctx, "python3", "-c", "import venv"); err != nil {
		check.Status = StatusMissing
		check.Message = "venv module not available"
		return check
	}

	check.Status = StatusOK
	check.Message = "available"
	return check
}

// CheckSystemctl verifies systemd is managing this host.
func CheckSystemctl(ctx context.Context, exec sysexec.Executor) Check {
	return checkTool(ctx, exec, IDSystemctl, "systemctl", "Registers the bot service",
		[]string{"--version"}, nil)
}

// CheckUnitDir verifies the systemd unit directory is writable.
func CheckUnitDir(unitDir string) Check {
	check := Check{
		ID:          IDUnitDir,
		Name:        "unit directory",
		Description: "Where the service unit is installed",
	}

	info, err := os.Stat(unitDir)
	if err != nil || !info.IsDir() {
		check.Status = StatusMissing
		check.Message = unitDir + " does not exist"
		return check
	}

	// Probe writability directly; permission bits lie under ACLs and
	// containers.
	probe := filepath.Join(unitDir, ".provision-probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		check.Status = StatusWarning
		check.Message = "not writable (run with sudo)"
		return check
	}
	f.Close()
	os.Remove(probe)

	check.Status = StatusOK
	check.Message = "writable"
	return check
}
