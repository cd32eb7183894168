// Package main provides the provision CLI for installing the Playerok Stars
// bot as a systemd service.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sampturned/Dimas/pkg/config"
	"github.com/sampturned/Dimas/pkg/doctor"
	"github.com/sampturned/Dimas/pkg/provisioner"
	"github.com/sampturned/Dimas/pkg/systemd"
	"github.com/sampturned/Dimas/pkg/tui"
)

// version is set via -ldflags during build
var version = "dev"

// Shared flag values. One command runs per process, so commands can share
// these without stepping on each other.
var (
	flagConfig   string
	flagDryRun   bool
	flagRecreate bool
	flagSkipApt  bool
	flagNoTUI    bool
	flagUnitDir  string
	flagYes      bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "provision",
})

func main() {
	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// exactProvisionArgs enforces the two positional parameters and keeps the
// usage line in the error so a bad invocation explains itself.
func exactProvisionArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected exactly 2 arguments\nusage: %s <user> <app-dir>", cmd.CommandPath())
	}
	return nil
}

// newRootCmd creates the root command.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "provision <user> <app-dir>",
		Short: "Install the Playerok Stars bot as a systemd service",
		Long: `provision prepares an Ubuntu host to run the Playerok Stars bot:

  - installs OS packages via apt
  - creates a Python virtual environment under <app-dir>/venv
  - installs Python dependencies (requirements.txt if present, otherwise
    the built-in fallback set) and the Playwright browser engine
  - writes and enables a systemd unit for the bot

The service is enabled but not started, so the configuration can be
verified before the first run.`,
		Version: version,
		Args:    exactProvisionArgs,
		RunE:    runProvision,
	}

	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML file overriding service name, packages, and unit settings")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the plan without applying anything")
	rootCmd.Flags().BoolVar(&flagRecreate, "recreate-venv", false, "Delete an existing venv and build a fresh one")
	rootCmd.Flags().BoolVar(&flagSkipApt, "skip-apt", false, "Skip the OS package stage")
	rootCmd.Flags().BoolVar(&flagNoTUI, "no-tui", false, "Log stage progress instead of rendering the progress view")
	rootCmd.Flags().StringVar(&flagUnitDir, "unit-dir", config.UnitDir, "Directory the unit file is installed to")

	rootCmd.AddCommand(
		newPlanCmd(),
		newRenderCmd(),
		newStatusCmd(),
		newDoctorCmd(),
		newWizardCmd(),
	)

	return rootCmd
}

// loadConfig builds the run configuration from args and the override file.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(args[0], args[1], flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runProvision executes the full pipeline.
func runProvision(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	opts := provisioner.Options{
		SkipApt:      flagSkipApt,
		RecreateVenv: flagRecreate,
		UnitDir:      flagUnitDir,
	}

	if flagDryRun {
		plan, err := provisioner.New(cfg, opts).Plan(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(planSummary(cfg, plan))
		return nil
	}

	if flagNoTUI {
		return runPipelineLogged(cmd.Context(), cfg, opts)
	}
	return runPipelineTUI(cmd.Context(), cfg, opts)
}

// runPipelineLogged runs the pipeline with log-line progress.
func runPipelineLogged(ctx context.Context, cfg *config.Config, opts provisioner.Options) error {
	opts.Progress = func(ev provisioner.ProgressEvent) {
		if ev.Err != nil {
			logger.Error(ev.Message, "stage", ev.Stage)
			return
		}
		logger.Info(ev.Message, "stage", ev.Stage)
	}

	report, err := provisioner.New(cfg, opts).Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("done",
		"run_id", report.RunID,
		"duration", report.Duration().Round(time.Millisecond),
		"deps_source", report.DepsSource,
		"unit_changed", report.UnitChanged,
	)
	return nil
}

// runPipelineTUI runs the pipeline behind the progress view.
func runPipelineTUI(ctx context.Context, cfg *config.Config, opts provisioner.Options) error {
	events := make(chan provisioner.ProgressEvent, 16)
	opts.Progress = func(ev provisioner.ProgressEvent) {
		events <- ev
	}

	var (
		report *provisioner.Report
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		report, runErr = provisioner.New(cfg, opts).Run(ctx)
	}()

	if err := tui.RunProgress(events); err != nil {
		<-done
		return err
	}
	<-done

	if runErr != nil {
		return runErr
	}

	fmt.Printf("\nService:   %s\n", cfg.UnitName())
	fmt.Printf("Unit file: %s\n", cfg.UnitPath())
	fmt.Printf("Run ID:    %s\n", report.RunID)
	fmt.Println("\nStart it now with:")
	fmt.Printf("  sudo systemctl start %s\n", cfg.ServiceName)
	return nil
}

// runPlan shows the pending changes without applying them.
func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	plan, err := provisioner.New(cfg, provisioner.Options{UnitDir: flagUnitDir}).Plan(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(planSummary(cfg, plan))
	return nil
}

// runRender prints the generated unit file.
func runRender(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	data, err := provisioner.New(cfg, provisioner.Options{}).Unit().Render()
	if err != nil {
		return err
	}

	fmt.Print(string(data))
	return nil
}

// runStatus queries systemd for the service state.
func runStatus(cmd *cobra.Command, args []string) error {
	serviceName := config.DefaultServiceName
	if len(args) == 1 {
		serviceName = args[0]
	}
	unitName := serviceName + ".service"

	manager := systemd.NewManager(config.UnitDir)
	enabled, err := manager.IsEnabled(cmd.Context(), unitName)
	if err != nil {
		return err
	}
	active, err := manager.IsActive(cmd.Context(), unitName)
	if err != nil {
		return err
	}

	fmt.Printf("Service: %s\n", unitName)
	fmt.Printf("Enabled: %s\n", enabled)
	fmt.Printf("Active:  %s\n", active)
	return nil
}

// runDoctor checks host prerequisites and optionally fixes them.
func runDoctor(cmd *cobra.Command, fix bool) error {
	checker := doctor.NewChecker()
	groups := checker.CheckAll(cmd.Context())

	fixer := doctor.NewFixer()
	for gi := range groups {
		fmt.Println(tui.TitleStyle.Render(groups[gi].Name))
		for ci := range groups[gi].Checks {
			check := &groups[gi].Checks[ci]
			printCheck(check)

			if fix && check.Status == doctor.StatusMissing && check.FixCommand != nil {
				fmt.Printf("    fixing: %s\n", check.FixCommand.Command)
				if err := fixer.RunFix(cmd.Context(), check.FixCommand); err != nil {
					fmt.Println("    " + tui.ErrorStyle.Render(err.Error()))
					continue
				}
				*check = checker.GetCheck(cmd.Context(), check.ID)
				printCheck(check)
			}
		}
		fmt.Println()
	}

	summary := checker.GetSummary(groups)
	if checker.HasIssues(groups) {
		return fmt.Errorf("%d of %d prerequisites missing or failing", summary.Missing+summary.Errors, summary.Total)
	}

	fmt.Println(tui.SuccessStyle.Render("All prerequisites satisfied."))
	return nil
}

// printCheck prints a single check result line.
func printCheck(check *doctor.Check) {
	var marker string
	switch check.Status {
	case doctor.StatusOK:
		marker = tui.SuccessStyle.Render("✓")
	case doctor.StatusWarning:
		marker = tui.WarningStyle.Render("!")
	default:
		marker = tui.ErrorStyle.Render("✗")
	}
	fmt.Printf("  %s %-16s %s\n", marker, check.Name, check.Message)
}

// runWizard collects parameters interactively, then provisions.
func runWizard(cmd *cobra.Command, _ []string) error {
	result, err := tui.RunWizard()
	if err != nil {
		return err
	}

	cfg, err := config.Load(result.User, result.AppDir, flagConfig)
	if err != nil {
		return err
	}
	cfg.ServiceName = result.ServiceName
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := provisioner.Options{RecreateVenv: result.RecreateVenv}
	plan, err := provisioner.New(cfg, opts).Plan(cmd.Context())
	if err != nil {
		return err
	}

	if !flagYes {
		confirmed, err := tui.ConfirmApply(planSummary(cfg, plan))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	return runPipelineTUI(cmd.Context(), cfg, opts)
}

// planSummary formats a plan for review.
func planSummary(cfg *config.Config, plan *provisioner.Plan) string {
	var b strings.Builder

	b.WriteString(tui.InfoStyle.Render("Service") + "\n")
	fmt.Fprintf(&b, "  Name:      %s\n", cfg.UnitName())
	fmt.Fprintf(&b, "  User:      %s\n", cfg.User)
	fmt.Fprintf(&b, "  App dir:   %s\n", cfg.AppDir)
	fmt.Fprintf(&b, "  Unit file: %s\n", plan.UnitPath)

	b.WriteString(tui.InfoStyle.Render("OS packages") + "\n")
	if plan.SkipApt {
		b.WriteString("  skipped\n")
	} else {
		fmt.Fprintf(&b, "  %s\n", strings.Join(plan.AptPackages, ", "))
	}

	b.WriteString(tui.InfoStyle.Render("Python environment") + "\n")
	if plan.VenvExists && !plan.Recreate {
		fmt.Fprintf(&b, "  reuse %s\n", cfg.VenvDir())
	} else {
		fmt.Fprintf(&b, "  create %s\n", cfg.VenvDir())
	}
	fmt.Fprintf(&b, "  %d dependencies from %s\n", len(plan.Resolution.Requirements), plan.Resolution.Source)
	fmt.Fprintf(&b, "  browser engines: %s\n", strings.Join(plan.Browsers, ", "))

	b.WriteString(tui.InfoStyle.Render("Unit file") + "\n")
	if plan.UnitUpToDate() {
		b.WriteString("  up to date\n")
	} else {
		for _, line := range strings.Split(strings.TrimRight(plan.UnitDiff, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	return b.String()
}
