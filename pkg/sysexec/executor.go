// Package sysexec wraps subprocess execution behind an interface so callers
// can be tested without touching the host.
package sysexec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// Executor runs external commands and probes the host.
type Executor interface {
	// LookPath resolves a binary on PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its output. On failure the output
	// holds whatever the command printed, stderr first.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// RunWithEnv is Run with extra environment variables appended.
	RunWithEnv(ctx context.Context, env []string, name string, args ...string) (string, error)

	// CombinedOutput executes a command and returns interleaved stdout/stderr.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// FileExists reports whether a path exists.
	FileExists(path string) bool
}

// RealExecutor runs commands on the real system.
type RealExecutor struct{}

// New creates a RealExecutor.
func New() *RealExecutor {
	return &RealExecutor{}
}

// LookPath resolves a binary on PATH.
func (e *RealExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns trimmed stdout. On failure stderr is
// returned instead when present, since that is where tools explain themselves.
func (e *RealExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	return e.RunWithEnv(ctx, nil, name, args...)
}

// RunWithEnv executes a command with extra environment variables appended to
// the current environment.
func (e *RealExecutor) RunWithEnv(ctx context.Context, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return msg, err
		}
		return out, err
	}
	return out, nil
}

// CombinedOutput executes a command and returns interleaved stdout/stderr.
func (e *RealExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FileExists reports whether a path exists.
func (e *RealExecutor) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
