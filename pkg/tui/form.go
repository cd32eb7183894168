package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/sampturned/Dimas/pkg/config"
)

// WizardResult holds the input collected by the interactive wizard.
type WizardResult struct {
	User         string
	AppDir       string
	ServiceName  string
	RecreateVenv bool
}

// RunWizard collects provisioning parameters interactively.
func RunWizard() (*WizardResult, error) {
	result := &WizardResult{
		ServiceName: config.DefaultServiceName,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service user").
				Description("OS account the bot runs as").
				Placeholder("deploy").
				Validate(config.ValidateUser).
				Value(&result.User),
			huh.NewInput().
				Title("Application directory").
				Description("Absolute path containing script.py").
				Placeholder("/opt/bot").
				Validate(config.ValidateAppDir).
				Value(&result.AppDir),
			huh.NewInput().
				Title("Service name").
				Description("Systemd unit name, without .service").
				Validate(config.ValidateServiceName).
				Value(&result.ServiceName),
			huh.NewConfirm().
				Title("Recreate virtual environment?").
				Description("Delete an existing venv and build a fresh one").
				Affirmative("Yes").
				Negative("No").
				Value(&result.RecreateVenv),
		),
	).WithTheme(Theme())

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard cancelled: %w", err)
	}

	return result, nil
}

// ConfirmApply shows the pending changes and asks for confirmation before the
// pipeline mutates the host.
func ConfirmApply(summary string) (bool, error) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Review Provisioning Plan"))
	fmt.Println(summary)

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Apply this plan?").
				Description("This will modify OS packages, the app directory, and systemd state").
				Affirmative("Yes, apply").
				Negative("No, cancel").
				Value(&confirmed),
		),
	).WithTheme(Theme())

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}

	return confirmed, nil
}
