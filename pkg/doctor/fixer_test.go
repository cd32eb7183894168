package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFixCommand(t *testing.T) {
	fix := GetFixCommand(IDPython3)
	require.NotNil(t, fix)
	assert.Equal(t, "sudo apt-get install -y python3", fix.Command)
	assert.True(t, fix.Sudo)
}

func TestGetFixCommandUnfixable(t *testing.T) {
	// apt-get has an entry but no runnable command
	assert.Nil(t, GetFixCommand(IDAptGet))
	assert.Nil(t, GetFixCommand(IDSystemctl))
	assert.Nil(t, GetFixCommand("bogus"))
}

func TestRunFix(t *testing.T) {
	exec := newFakeExecutor()
	fixer := NewFixerWithExecutor(exec)

	err := fixer.RunFix(context.Background(), GetFixCommand(IDVenv))
	require.NoError(t, err)
	require.Len(t, exec.commands, 1)
	assert.Equal(t, "sh -c sudo apt-get install -y python3-venv", exec.commands[0])
}

func TestRunFixFailureSurfacesOutput(t *testing.T) {
	exec := newFakeExecutor()
	cmd := "sh -c sudo apt-get install -y python3"
	exec.errs[cmd] = errors.New("exit status 100")
	exec.outputs[cmd] = "E: Unable to locate package python3"

	err := NewFixerWithExecutor(exec).RunFix(context.Background(), GetFixCommand(IDPython3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate package")
}

func TestRunFixNil(t *testing.T) {
	err := NewFixerWithExecutor(newFakeExecutor()).RunFix(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fix command")
}
