// Package systemd renders service unit files and drives systemctl.
package systemd

import (
	"fmt"
	"io"
	"sort"

	"github.com/coreos/go-systemd/v22/unit"
)

// Unit is the in-memory descriptor of a service unit. It is rendered through
// the systemd option serializer rather than string interpolation, so field
// values cannot silently produce extra directives.
type Unit struct {
	Name        string // unit file name, e.g. "stars-bot.service"
	Description string
	After       string

	Type             string
	User             string
	WorkingDirectory string
	ExecStart        string
	Restart          string
	RestartSec       int
	Environment      map[string]string

	WantedBy string
}

// NewServiceUnit returns a unit descriptor with the standard supervision
// settings for a long-running bot process.
func NewServiceUnit(name, description, user, workingDir, execStart string) *Unit {
	return &Unit{
		Name:             name,
		Description:      description,
		After:            "network.target",
		Type:             "simple",
		User:             user,
		WorkingDirectory: workingDir,
		ExecStart:        execStart,
		Restart:          "on-failure",
		RestartSec:       5,
		Environment:      map[string]string{},
		WantedBy:         "multi-user.target",
	}
}

// Options returns the descriptor as an ordered list of unit options.
// Environment keys are emitted in sorted order so rendering is deterministic.
func (u *Unit) Options() []*unit.UnitOption {
	opts := []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", u.Description),
		unit.NewUnitOption("Unit", "After", u.After),
		unit.NewUnitOption("Service", "Type", u.Type),
		unit.NewUnitOption("Service", "User", u.User),
		unit.NewUnitOption("Service", "WorkingDirectory", u.WorkingDirectory),
		unit.NewUnitOption("Service", "ExecStart", u.ExecStart),
		unit.NewUnitOption("Service", "Restart", u.Restart),
		unit.NewUnitOption("Service", "RestartSec", fmt.Sprintf("%d", u.RestartSec)),
	}

	keys := make([]string, 0, len(u.Environment))
	for k := range u.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, unit.NewUnitOption("Service", "Environment", k+"="+u.Environment[k]))
	}

	opts = append(opts, unit.NewUnitOption("Install", "WantedBy", u.WantedBy))
	return opts
}

// Render serializes the unit to its on-disk representation.
func (u *Unit) Render() ([]byte, error) {
	data, err := io.ReadAll(unit.Serialize(u.Options()))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize unit: %w", err)
	}
	return data, nil
}
