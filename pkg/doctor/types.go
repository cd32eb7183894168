// Package doctor provides host prerequisite checking for the provisioner.
package doctor

// CheckStatus represents the status of a prerequisite check.
type CheckStatus int

const (
	// StatusOK indicates the prerequisite is present and working.
	StatusOK CheckStatus = iota
	// StatusMissing indicates the prerequisite is not installed.
	StatusMissing
	// StatusError indicates an error occurred during the check.
	StatusError
	// StatusWarning indicates the prerequisite has issues but may work.
	StatusWarning
)

// String returns the string representation of the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusError:
		return "error"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Check represents a single prerequisite check result.
type Check struct {
	ID          string      // Unique identifier, e.g. "python3"
	Name        string      // Display name
	Description string      // What this prerequisite is for
	Status      CheckStatus // Current status
	Message     string      // Status message (version info, error, etc.)
	FixCommand  *FixCommand // How to fix if missing (nil if not fixable)
}

// FixCommand describes how to fix a missing prerequisite.
type FixCommand struct {
	Description string // Human-readable description of what the fix does
	Command     string // Shell command to run
	Sudo        bool   // Whether the command requires sudo
}

// CheckGroup represents a group of related prerequisite checks.
type CheckGroup struct {
	ID          string  // Unique identifier
	Name        string  // Display name
	Description string  // What this group covers
	Checks      []Check // Individual checks in this group
}

// GroupID constants for check groups.
const (
	GroupPackaging = "packaging"
	GroupPython    = "python"
	GroupSystemd   = "systemd"
)

// CheckID constants for individual checks.
const (
	IDAptGet    = "apt-get"
	IDPython3   = "python3"
	IDVenv      = "venv-module"
	IDSystemctl = "systemctl"
	IDUnitDir   = "unit-dir"
)
