package doctor

import (
	"context"

	"github.com/sampturned/Dimas/pkg/config"
	"github.com/sampturned/Dimas/pkg/sysexec"
)

// Checker provides prerequisite checking functionality.
type Checker struct {
	executor sysexec.Executor
	unitDir  string
}

// NewChecker creates a Checker with the real executor.
func NewChecker() *Checker {
	return &Checker{
		executor: sysexec.New(),
		unitDir:  config.UnitDir,
	}
}

// NewCheckerWithExecutor creates a Checker with a custom executor (for testing).
func NewCheckerWithExecutor(exec sysexec.Executor) *Checker {
	return &Checker{
		executor: exec,
		unitDir:  config.UnitDir,
	}
}

// SetUnitDir overrides the systemd unit directory to check.
func (c *Checker) SetUnitDir(dir string) {
	c.unitDir = dir
}

// CheckAll runs all checks and returns groups with results.
func (c *Checker) CheckAll(ctx context.Context) []CheckGroup {
	var result []CheckGroup
	for _, group := range GetGroups() {
		result = append(result, c.CheckGroup(ctx, group.ID))
	}
	return result
}

// CheckGroup runs all checks for a specific group.
func (c *Checker) CheckGroup(ctx context.Context, groupID string) CheckGroup {
	def, ok := GetGroupDefinition(groupID)
	if !ok {
		return CheckGroup{ID: groupID, Name: "Unknown"}
	}

	group := CheckGroup{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
	}
	for _, checkID := range def.CheckIDs {
		group.Checks = append(group.Checks, c.runCheck(ctx, checkID))
	}
	return group
}

// runCheck runs a specific check by ID.
func (c *Checker) runCheck(ctx context.Context, checkID string) Check {
	switch checkID {
	case IDAptGet:
		return CheckAptGet(ctx, c.executor)
	case IDPython3:
		return CheckPython3(ctx, c.executor)
	case IDVenv:
		return CheckVenvModule(ctx, c.executor)
	case IDSystemctl:
		return CheckSystemctl(ctx, c.executor)
	case IDUnitDir:
		return CheckUnitDir(c.unitDir)
	default:
		return Check{
			ID:      checkID,
			Name:    checkID,
			Status:  StatusError,
			Message: "unknown check",
		}
	}
}

// GetCheck runs a single check by ID.
func (c *Checker) GetCheck(ctx context.Context, checkID string) Check {
	return c.runCheck(ctx, checkID)
}

// Summary represents an overall health summary.
type Summary struct {
	Total    int
	OK       int
	Missing  int
	Warnings int
	Errors   int
}

// GetSummary returns a summary of check results.
func (c *Checker) GetSummary(groups []CheckGroup) Summary {
	var summary Summary
	for _, group := range groups {
		for _, check := range group.Checks {
			summary.Total++
			switch check.Status {
			case StatusOK:
				summary.OK++
			case StatusMissing:
				summary.Missing++
			case StatusWarning:
				summary.Warnings++
			case StatusError:
				summary.Errors++
			}
		}
	}
	return summary
}

// HasIssues returns true if any checks are missing or failed.
func (c *Checker) HasIssues(groups []CheckGroup) bool {
	summary := c.GetSummary(groups)
	return summary.Missing > 0 || summary.Errors > 0
}
