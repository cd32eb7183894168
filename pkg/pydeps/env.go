package pydeps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sampturned/Dimas/pkg/sysexec"
)

// Env is a Python virtual environment rooted at Dir.
type Env struct {
	Dir      string
	executor sysexec.Executor
}

// NewEnv creates an Env with the real executor.
func NewEnv(dir string) *Env {
	return &Env{Dir: dir, executor: sysexec.New()}
}

// NewEnvWithExecutor creates an Env with a custom executor (for testing).
func NewEnvWithExecutor(dir string, exec sysexec.Executor) *Env {
	return &Env{Dir: dir, executor: exec}
}

// Python returns the interpreter path inside the environment.
func (e *Env) Python() string {
	return filepath.Join(e.Dir, "bin", "python3")
}

// Exists reports whether the environment already has an interpreter.
func (e *Env) Exists() bool {
	return e.executor.FileExists(e.Python())
}

// Ensure creates the virtual environment if it does not exist yet. An
// existing environment is reused as-is; pass recreate to delete it first.
func (e *Env) Ensure(ctx context.Context, recreate bool) error {
	if recreate {
		if err := os.RemoveAll(e.Dir); err != nil {
			return fmt.Errorf("failed to remove existing venv: %w", err)
		}
	} else if e.Exists() {
		return nil
	}

	out, err := e.executor.Run(ctx, "python3", "-m", "venv", e.Dir)
	if err != nil {
		return commandError("venv creation", out, err)
	}
	return nil
}

// InstallRequirementsFile installs dependencies from a manifest file.
func (e *Env) InstallRequirementsFile(ctx context.Context, path string) error {
	out, err := e.executor.Run(ctx, e.Python(), "-m", "pip", "install", "-r", path)
	if err != nil {
		return commandError("pip install -r", out, err)
	}
	return nil
}

// InstallPackages installs the given package specifiers.
func (e *Env) InstallPackages(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	args := append([]string{"-m", "pip", "install"}, packages...)
	out, err := e.executor.Run(ctx, e.Python(), args...)
	if err != nil {
		return commandError("pip install", out, err)
	}
	return nil
}

// Install installs a resolved dependency set. Manifest resolutions go through
// pip's -r flag so specifier syntax is interpreted by pip itself.
func (e *Env) Install(ctx context.Context, res *Resolution) error {
	if res.Source == SourceManifest {
		return e.InstallRequirementsFile(ctx, res.ManifestPath)
	}
	return e.InstallPackages(ctx, res.Requirements...)
}

// InstallBrowsers installs Playwright browser engines into the environment.
// This always runs after dependency installation, regardless of which
// dependency source was used.
func (e *Env) InstallBrowsers(ctx context.Context, engines ...string) error {
	args := append([]string{"-m", "playwright", "install"}, engines...)
	out, err := e.executor.Run(ctx, e.Python(), args...)
	if err != nil {
		return commandError("playwright install", out, err)
	}
	return nil
}

// commandError formats a subprocess failure, preferring captured output over
// the bare exit status.
func commandError(what, output string, err error) error {
	if msg := strings.TrimSpace(output); msg != "" {
		return fmt.Errorf("%s failed: %s", what, msg)
	}
	return fmt.Errorf("%s failed: %w", what, err)
}
