// Package provisioner runs the end-to-end install pipeline for the bot host.
package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sampturned/Dimas/pkg/apt"
	"github.com/sampturned/Dimas/pkg/config"
	"github.com/sampturned/Dimas/pkg/pydeps"
	"github.com/sampturned/Dimas/pkg/sysexec"
	"github.com/sampturned/Dimas/pkg/systemd"
	"github.com/sampturned/Dimas/pkg/textfile"
)

// Options tunes a provisioning run.
type Options struct {
	// SkipApt skips the OS package stage.
	SkipApt bool

	// RecreateVenv deletes an existing virtual environment first.
	RecreateVenv bool

	// UnitDir overrides where the unit file is installed.
	UnitDir string

	// Progress receives stage updates; nil disables reporting.
	Progress ProgressFunc
}

// Provisioner executes the provisioning pipeline for one configuration.
type Provisioner struct {
	cfg  *config.Config
	opts Options

	executor  sysexec.Executor
	installer *apt.Installer
	env       *pydeps.Env
	manager   *systemd.Manager
}

// New creates a Provisioner using the real system.
func New(cfg *config.Config, opts Options) *Provisioner {
	return NewWithExecutor(cfg, opts, sysexec.New())
}

// NewWithExecutor creates a Provisioner with a custom executor (for testing).
func NewWithExecutor(cfg *config.Config, opts Options, exec sysexec.Executor) *Provisioner {
	unitDir := opts.UnitDir
	if unitDir == "" {
		unitDir = config.UnitDir
	}

	return &Provisioner{
		cfg:       cfg,
		opts:      opts,
		executor:  exec,
		installer: apt.NewInstallerWithExecutor(exec),
		env:       pydeps.NewEnvWithExecutor(cfg.VenvDir(), exec),
		manager:   systemd.NewManagerWithExecutor(unitDir, exec),
	}
}

// Unit returns the service unit descriptor for the configuration.
func (p *Provisioner) Unit() *systemd.Unit {
	u := systemd.NewServiceUnit(
		p.cfg.UnitName(),
		p.cfg.Description,
		p.cfg.User,
		p.cfg.AppDir,
		p.cfg.ExecStart(),
	)
	u.RestartSec = p.cfg.RestartSec
	for k, v := range p.cfg.Environment {
		u.Environment[k] = v
	}
	return u
}

// Run executes the pipeline. Execution is strictly sequential and aborts on
// the first failing stage; partially applied changes are left in place for the
// operator to re-run after fixing the cause.
func (p *Provisioner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	fail := func(stage Stage, err error) (*Report, error) {
		report.Finished = time.Now()
		report.Failed = stage
		p.emit(StageError, fmt.Sprintf("%s: %v", stage.DisplayName(), err), err)
		return report, err
	}

	p.emit(StageValidating, "validating configuration", nil)
	if err := p.cfg.Validate(); err != nil {
		return fail(StageValidating, err)
	}
	report.mark(StageValidating)

	if p.opts.SkipApt {
		p.emit(StagePackages, "skipping OS packages", nil)
	} else {
		p.emit(StagePackages, fmt.Sprintf("installing %d OS packages", len(p.cfg.AptPackages)), nil)
		if err := p.installer.Update(ctx); err != nil {
			return fail(StagePackages, err)
		}
		if err := p.installer.Install(ctx, p.cfg.AptPackages...); err != nil {
			return fail(StagePackages, err)
		}
	}
	report.mark(StagePackages)

	p.emit(StageNormalizing, "normalizing line endings", nil)
	for _, path := range []string{p.cfg.EntrypointPath(), p.cfg.RequirementsPath()} {
		changed, err := textfile.NormalizeCRLF(path)
		if err != nil {
			return fail(StageNormalizing, err)
		}
		if changed {
			report.Normalized = append(report.Normalized, path)
		}
	}
	report.mark(StageNormalizing)

	p.emit(StageVenv, "ensuring virtual environment at "+p.cfg.VenvDir(), nil)
	if err := p.env.Ensure(ctx, p.opts.RecreateVenv); err != nil {
		return fail(StageVenv, err)
	}
	report.mark(StageVenv)

	resolution, err := pydeps.Resolve(p.cfg.RequirementsPath(), p.cfg.FallbackPyDeps)
	if err != nil {
		return fail(StageDeps, err)
	}
	report.DepsSource = resolution.Source
	p.emit(StageDeps, fmt.Sprintf("installing %d dependencies (%s)", len(resolution.Requirements), resolution.Source), nil)
	if err := p.env.Install(ctx, resolution); err != nil {
		return fail(StageDeps, err)
	}
	report.mark(StageDeps)

	p.emit(StageBrowsers, "installing browser engines", nil)
	if err := p.env.InstallBrowsers(ctx, p.cfg.Browsers...); err != nil {
		return fail(StageBrowsers, err)
	}
	report.mark(StageBrowsers)

	p.emit(StageUnit, "writing "+p.cfg.UnitName(), nil)
	changed, err := p.manager.WriteUnit(p.Unit())
	if err != nil {
		return fail(StageUnit, err)
	}
	report.UnitChanged = changed
	report.mark(StageUnit)

	p.emit(StageReload, "reloading systemd", nil)
	if err := p.manager.DaemonReload(ctx); err != nil {
		return fail(StageReload, err)
	}
	report.mark(StageReload)

	// Enable only; the first start is left to the operator so the
	// configuration can be inspected before the bot runs.
	p.emit(StageEnable, "enabling "+p.cfg.UnitName(), nil)
	if err := p.manager.Enable(ctx, p.cfg.UnitName()); err != nil {
		return fail(StageEnable, err)
	}
	report.mark(StageEnable)

	report.Finished = time.Now()
	p.emit(StageComplete, "service installed and enabled", nil)
	return report, nil
}

// Plan computes what a run would change without touching the system.
func (p *Provisioner) Plan(ctx context.Context) (*Plan, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	resolution, err := pydeps.Resolve(p.cfg.RequirementsPath(), p.cfg.FallbackPyDeps)
	if err != nil {
		return nil, err
	}

	unitDiff, err := p.manager.DiffUnit(p.Unit())
	if err != nil {
		return nil, err
	}

	return &Plan{
		AptPackages: p.cfg.AptPackages,
		SkipApt:     p.opts.SkipApt,
		Resolution:  resolution,
		VenvExists:  p.env.Exists(),
		Recreate:    p.opts.RecreateVenv,
		Browsers:    p.cfg.Browsers,
		UnitPath:    p.manager.UnitPath(p.Unit()),
		UnitDiff:    unitDiff,
	}, nil
}

// Status queries systemd for the service's current state.
func (p *Provisioner) Status(ctx context.Context) (enabled, active string, err error) {
	enabled, err = p.manager.IsEnabled(ctx, p.cfg.UnitName())
	if err != nil {
		return "", "", err
	}
	active, err = p.manager.IsActive(ctx, p.cfg.UnitName())
	if err != nil {
		return "", "", err
	}
	return enabled, active, nil
}

// emit sends a progress event if a callback is configured.
func (p *Provisioner) emit(stage Stage, message string, err error) {
	if p.opts.Progress == nil {
		return
	}
	p.opts.Progress(ProgressEvent{
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	})
}
