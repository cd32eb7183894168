package provisioner

import "time"

// Stage represents a provisioning stage.
type Stage string

const (
	StageValidating  Stage = "validating"
	StagePackages    Stage = "packages"
	StageNormalizing Stage = "normalizing"
	StageVenv        Stage = "venv"
	StageDeps        Stage = "deps"
	StageBrowsers    Stage = "browsers"
	StageUnit        Stage = "unit"
	StageReload      Stage = "reload"
	StageEnable      Stage = "enable"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the stage.
func (s Stage) DisplayName() string {
	switch s {
	case StageValidating:
		return "Validating"
	case StagePackages:
		return "Installing OS Packages"
	case StageNormalizing:
		return "Normalizing Line Endings"
	case StageVenv:
		return "Creating Virtual Environment"
	case StageDeps:
		return "Installing Dependencies"
	case StageBrowsers:
		return "Installing Browser Engines"
	case StageUnit:
		return "Writing Service Unit"
	case StageReload:
		return "Reloading Systemd"
	case StageEnable:
		return "Enabling Service"
	case StageComplete:
		return "Complete"
	case StageError:
		return "Error"
	default:
		return string(s)
	}
}

// RunStages lists the pipeline stages in execution order.
func RunStages() []Stage {
	return []Stage{
		StageValidating,
		StagePackages,
		StageNormalizing,
		StageVenv,
		StageDeps,
		StageBrowsers,
		StageUnit,
		StageReload,
		StageEnable,
	}
}

// ProgressEvent represents a provisioning progress update.
type ProgressEvent struct {
	Stage   Stage
	Message string
	Err     error
	Time    time.Time
}

// ProgressFunc receives pipeline progress updates.
type ProgressFunc func(ProgressEvent)
