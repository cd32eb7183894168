// Package config holds the provisioning parameters and their derived paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values applied when no override file is given.
const (
	DefaultServiceName = "stars-bot"
	DefaultDescription = "Playerok Stars Bot"
	DefaultRestartSec  = 5
	DefaultEntrypoint  = "script.py"
	DefaultInterpreter = "python3"
)

// UnitDir is where generated service units are installed.
const UnitDir = "/etc/systemd/system"

// Config represents a full provisioning run: who the service runs as, where the
// application lives, and what gets installed.
type Config struct {
	// User is the OS account the service runs as.
	User string `yaml:"user"`

	// AppDir is the application directory containing the bot entrypoint.
	AppDir string `yaml:"app_dir"`

	// ServiceName is the systemd unit name without the .service suffix.
	ServiceName string `yaml:"service_name"`

	// Description is the unit's Description= value.
	Description string `yaml:"description"`

	// Entrypoint is the script launched by the unit, relative to AppDir.
	Entrypoint string `yaml:"entrypoint"`

	// AptPackages are the OS packages installed before the venv is created.
	AptPackages []string `yaml:"apt_packages"`

	// FallbackPyDeps are installed when AppDir has no requirements.txt.
	FallbackPyDeps []string `yaml:"fallback_py_deps"`

	// Browsers are the Playwright engines to install.
	Browsers []string `yaml:"browsers"`

	// RestartSec is the unit's RestartSec= value in seconds.
	RestartSec int `yaml:"restart_sec"`

	// Environment is the unit's Environment= assignments.
	Environment map[string]string `yaml:"environment"`
}

// Default returns the standard configuration for the given user and app dir.
func Default(user, appDir string) *Config {
	return &Config{
		User:        user,
		AppDir:      appDir,
		ServiceName: DefaultServiceName,
		Description: DefaultDescription,
		Entrypoint:  DefaultEntrypoint,
		AptPackages: []string{"python3", "python3-venv", "python3-pip"},
		FallbackPyDeps: []string{
			"playwright",
			"aiohttp",
			"playwright-stealth",
			"colorama",
		},
		Browsers:   []string{"webkit"},
		RestartSec: DefaultRestartSec,
		Environment: map[string]string{
			"PYTHONUNBUFFERED": "1",
		},
	}
}

// Load returns the default configuration with overrides from a YAML file
// applied on top. Zero-valued override fields keep their defaults.
func Load(user, appDir, overridePath string) (*Config, error) {
	cfg := Default(user, appDir)
	if overridePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var o Config
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.apply(&o)
	return cfg, nil
}

// apply copies non-zero override fields onto the config. User and AppDir come
// from the command line and are never overridable.
func (c *Config) apply(o *Config) {
	if o.ServiceName != "" {
		c.ServiceName = o.ServiceName
	}
	if o.Description != "" {
		c.Description = o.Description
	}
	if o.Entrypoint != "" {
		c.Entrypoint = o.Entrypoint
	}
	if len(o.AptPackages) > 0 {
		c.AptPackages = o.AptPackages
	}
	if len(o.FallbackPyDeps) > 0 {
		c.FallbackPyDeps = o.FallbackPyDeps
	}
	if len(o.Browsers) > 0 {
		c.Browsers = o.Browsers
	}
	if o.RestartSec > 0 {
		c.RestartSec = o.RestartSec
	}
	for k, v := range o.Environment {
		c.Environment[k] = v
	}
}

// VenvDir returns the virtual environment directory under the app dir.
func (c *Config) VenvDir() string {
	return filepath.Join(c.AppDir, "venv")
}

// PythonPath returns the venv interpreter path.
func (c *Config) PythonPath() string {
	return filepath.Join(c.VenvDir(), "bin", DefaultInterpreter)
}

// PipPath returns the venv pip path.
func (c *Config) PipPath() string {
	return filepath.Join(c.VenvDir(), "bin", "pip")
}

// RequirementsPath returns the optional dependency manifest path.
func (c *Config) RequirementsPath() string {
	return filepath.Join(c.AppDir, "requirements.txt")
}

// EntrypointPath returns the absolute path of the bot entrypoint.
func (c *Config) EntrypointPath() string {
	return filepath.Join(c.AppDir, c.Entrypoint)
}

// UnitName returns the full systemd unit name.
func (c *Config) UnitName() string {
	return c.ServiceName + ".service"
}

// UnitPath returns where the unit file is installed. The path is deterministic
// given the service name, so re-runs always target the same file.
func (c *Config) UnitPath() string {
	return filepath.Join(UnitDir, c.UnitName())
}

// ExecStart returns the unit's ExecStart= value.
func (c *Config) ExecStart() string {
	return c.PythonPath() + " " + c.EntrypointPath()
}
