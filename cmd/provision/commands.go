package main

import (
	"github.com/spf13/cobra"

	"github.com/sampturned/Dimas/pkg/config"
)

// newPlanCmd creates the plan subcommand.
func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <user> <app-dir>",
		Short: "Show what a run would change without applying it",
		Long: `Compute the desired state (OS packages, Python dependencies, unit file)
and diff it against the host without applying anything.`,
		Args: exactProvisionArgs,
		RunE: runPlan,
	}
	addConfigFlag(cmd)
	addUnitDirFlag(cmd)
	return cmd
}

// newRenderCmd creates the render subcommand.
func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <user> <app-dir>",
		Short: "Print the generated systemd unit file",
		Args:  exactProvisionArgs,
		RunE:  runRender,
	}
	addConfigFlag(cmd)
	return cmd
}

// newStatusCmd creates the status subcommand.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [service-name]",
		Short: "Show whether the service is enabled and running",
		Long: `Query systemd for the service's enablement and activity state.

After a successful provisioning run the service is enabled but inactive;
it starts automatically on the next boot, or manually via systemctl start.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
	return cmd
}

// newDoctorCmd creates the doctor subcommand.
func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check host prerequisites",
		Long:  `Check that apt, Python, and systemd are available on this host.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, fix)
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Attempt to fix missing prerequisites")
	return cmd
}

// newWizardCmd creates the wizard subcommand.
func newWizardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Provision interactively",
		Long:  `Collect the provisioning parameters through an interactive form, then run the pipeline.`,
		RunE:  runWizard,
	}
	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Apply without the confirmation prompt")
	return cmd
}

// addConfigFlag registers the shared --config flag.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML file overriding service name, packages, and unit settings")
}

// addUnitDirFlag registers the shared --unit-dir flag.
func addUnitDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagUnitDir, "unit-dir", config.UnitDir, "Directory the unit file is installed to")
}
