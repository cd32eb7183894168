package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// usernameRegex matches the name rules enforced by useradd.
var usernameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}\$?$`)

// serviceNameRegex keeps unit names to the safe portable subset.
var serviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9:_.-]+$`)

// Validate checks that the configuration can be rendered into a unit file
// without producing broken or ambiguous directives. Values are rejected here
// rather than escaped at render time.
func (c *Config) Validate() error {
	if err := ValidateUser(c.User); err != nil {
		return err
	}
	if err := ValidateAppDir(c.AppDir); err != nil {
		return err
	}
	if err := ValidateServiceName(c.ServiceName); err != nil {
		return err
	}
	if strings.TrimSpace(c.Entrypoint) == "" {
		return fmt.Errorf("entrypoint is required")
	}
	if strings.ContainsAny(c.Entrypoint, "\n\r") {
		return fmt.Errorf("entrypoint must not contain newlines")
	}
	if strings.ContainsAny(c.Description, "\n\r") {
		return fmt.Errorf("description must not contain newlines")
	}
	if c.RestartSec < 0 {
		return fmt.Errorf("restart_sec must not be negative")
	}
	for k, v := range c.Environment {
		if k == "" || strings.ContainsAny(k, "= \t\n") {
			return fmt.Errorf("invalid environment variable name %q", k)
		}
		if strings.ContainsAny(v, "\n\r") {
			return fmt.Errorf("environment variable %s must not contain newlines", k)
		}
	}
	return nil
}

// ValidateUser validates an OS account name.
func ValidateUser(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("user is required")
	}
	if !usernameRegex.MatchString(s) {
		return fmt.Errorf("invalid user %q: must be a valid account name (lowercase letters, digits, - and _)", s)
	}
	return nil
}

// ValidateAppDir validates the application directory path.
func ValidateAppDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("app directory is required")
	}
	if !filepath.IsAbs(s) {
		return fmt.Errorf("app directory %q must be an absolute path", s)
	}
	if strings.ContainsAny(s, "\n\r") {
		return fmt.Errorf("app directory must not contain newlines")
	}
	return nil
}

// ValidateServiceName validates the unit name without its .service suffix.
func ValidateServiceName(s string) error {
	if s == "" {
		return fmt.Errorf("service name is required")
	}
	if strings.HasSuffix(s, ".service") {
		return fmt.Errorf("service name %q must not include the .service suffix", s)
	}
	if !serviceNameRegex.MatchString(s) {
		return fmt.Errorf("invalid service name %q", s)
	}
	return nil
}
