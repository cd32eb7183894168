package provisioner

import (
	"time"

	"github.com/sampturned/Dimas/pkg/pydeps"
)

// Report summarizes a completed (or aborted) provisioning run.
type Report struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	Started  time.Time
	Finished time.Time

	// Completed lists the stages that finished successfully, in order.
	Completed []Stage

	// Failed names the stage that aborted the run, empty on success.
	Failed Stage

	// DepsSource records which dependency branch was taken.
	DepsSource pydeps.Source

	// Normalized lists files whose line endings were rewritten.
	Normalized []string

	// UnitChanged is true when the unit file on disk was (re)written.
	UnitChanged bool
}

// mark records a completed stage.
func (r *Report) mark(stage Stage) {
	r.Completed = append(r.Completed, stage)
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Plan describes what a run would do, for dry-run inspection.
type Plan struct {
	AptPackages []string
	SkipApt     bool

	Resolution *pydeps.Resolution
	VenvExists bool
	Recreate   bool
	Browsers   []string

	UnitPath string
	// UnitDiff is empty when the installed unit already matches.
	UnitDiff string
}

// UnitUpToDate reports whether the installed unit file already matches.
func (p *Plan) UnitUpToDate() bool {
	return p.UnitDiff == ""
}
