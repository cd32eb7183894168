package pydeps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records commands and returns scripted results.
type fakeExecutor struct {
	commands []string
	outputs  map[string]string
	errs     map[string]error
	files    map[string]bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		outputs: map[string]string{},
		errs:    map[string]error{},
		files:   map[string]bool{},
	}
}

func key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f.RunWithEnv(ctx, nil, name, args...)
}

func (f *fakeExecutor) RunWithEnv(_ context.Context, _ []string, name string, args ...string) (string, error) {
	k := key(name, args...)
	f.commands = append(f.commands, k)
	return f.outputs[k], f.errs[k]
}

func (f *fakeExecutor) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	k := key(name, args...)
	f.commands = append(f.commands, k)
	return []byte(f.outputs[k]), f.errs[k]
}

func (f *fakeExecutor) FileExists(path string) bool { return f.files[path] }

func TestEnsureCreatesWhenMissing(t *testing.T) {
	exec := newFakeExecutor()
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	err := env.Ensure(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "python3 -m venv /opt/bot/venv", exec.commands[0])
}

func TestEnsureReusesExisting(t *testing.T) {
	exec := newFakeExecutor()
	exec.files["/opt/bot/venv/bin/python3"] = true
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	err := env.Ensure(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, exec.commands)
}

func TestEnsureRecreate(t *testing.T) {
	dir := t.TempDir()
	venvDir := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venvDir, "bin"), 0755))

	exec := newFakeExecutor()
	exec.files[filepath.Join(venvDir, "bin", "python3")] = true
	env := NewEnvWithExecutor(venvDir, exec)

	err := env.Ensure(context.Background(), true)
	require.NoError(t, err)

	// The old directory is gone and venv creation ran anyway
	_, statErr := os.Stat(venvDir)
	assert.True(t, os.IsNotExist(statErr))
	require.Len(t, exec.commands, 1)
	assert.Equal(t, "python3 -m venv "+venvDir, exec.commands[0])
}

func TestEnsureFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.errs["python3 -m venv /opt/bot/venv"] = errors.New("exit status 1")
	exec.outputs["python3 -m venv /opt/bot/venv"] = "Error: no venv module"
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	err := env.Ensure(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no venv module")
}

func TestInstallManifestResolution(t *testing.T) {
	exec := newFakeExecutor()
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	res := &Resolution{
		Requirements: []string{"playwright==1.48.0"},
		Source:       SourceManifest,
		ManifestPath: "/opt/bot/requirements.txt",
	}
	err := env.Install(context.Background(), res)
	require.NoError(t, err)

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "/opt/bot/venv/bin/python3 -m pip install -r /opt/bot/requirements.txt", exec.commands[0])
}

func TestInstallFallbackResolution(t *testing.T) {
	exec := newFakeExecutor()
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	res := &Resolution{
		Requirements: []string{"playwright", "aiohttp"},
		Source:       SourceFallback,
	}
	err := env.Install(context.Background(), res)
	require.NoError(t, err)

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "/opt/bot/venv/bin/python3 -m pip install playwright aiohttp", exec.commands[0])
}

func TestInstallBrowsers(t *testing.T) {
	exec := newFakeExecutor()
	env := NewEnvWithExecutor("/opt/bot/venv", exec)

	err := env.InstallBrowsers(context.Background(), "webkit")
	require.NoError(t, err)

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "/opt/bot/venv/bin/python3 -m playwright install webkit", exec.commands[0])
}
