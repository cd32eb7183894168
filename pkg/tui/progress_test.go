package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampturned/Dimas/pkg/provisioner"
)

func event(stage provisioner.Stage, message string) eventMsg {
	return eventMsg(provisioner.ProgressEvent{Stage: stage, Message: message})
}

func TestProgressModelMarksStagesDone(t *testing.T) {
	m := NewProgressModel(nil)

	next, cmd := m.Update(event(provisioner.StageValidating, "validating configuration"))
	m = next.(*ProgressModel)
	require.NotNil(t, cmd, "must re-arm the event listener")
	assert.Equal(t, provisioner.StageValidating, m.current)
	assert.Empty(t, m.done)

	next, _ = m.Update(event(provisioner.StagePackages, "installing OS packages"))
	m = next.(*ProgressModel)
	assert.True(t, m.done[provisioner.StageValidating])
	assert.False(t, m.done[provisioner.StagePackages])
	assert.Equal(t, provisioner.StagePackages, m.current)
}

func TestProgressModelComplete(t *testing.T) {
	m := NewProgressModel(nil)

	next, _ := m.Update(event(provisioner.StageEnable, "enabling"))
	m = next.(*ProgressModel)

	next, cmd := m.Update(event(provisioner.StageComplete, "service installed and enabled"))
	m = next.(*ProgressModel)
	require.NotNil(t, cmd, "completion must quit the program")
	assert.True(t, m.finished)
	assert.True(t, m.done[provisioner.StageEnable])
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), "installed and enabled")
}

func TestProgressModelError(t *testing.T) {
	m := NewProgressModel(nil)

	next, _ := m.Update(event(provisioner.StageVenv, "ensuring virtual environment"))
	m = next.(*ProgressModel)

	pipelineErr := errors.New("venv creation failed: no space left on device")
	next, cmd := m.Update(eventMsg(provisioner.ProgressEvent{
		Stage: provisioner.StageError,
		Err:   pipelineErr,
	}))
	m = next.(*ProgressModel)
	require.NotNil(t, cmd, "errors must quit the program")
	assert.True(t, m.finished)
	assert.Equal(t, pipelineErr, m.Err())
	assert.Contains(t, m.View(), "no space left on device")
	assert.Contains(t, m.View(), "✗")
}

func TestProgressModelClosedChannel(t *testing.T) {
	m := NewProgressModel(nil)

	next, cmd := m.Update(eventsClosedMsg{})
	m = next.(*ProgressModel)
	require.NotNil(t, cmd)
	assert.True(t, m.finished)
	assert.NoError(t, m.Err())
}

func TestProgressModelViewChecklist(t *testing.T) {
	m := NewProgressModel(nil)

	next, _ := m.Update(event(provisioner.StageValidating, ""))
	m = next.(*ProgressModel)
	next, _ = m.Update(event(provisioner.StagePackages, "installing 3 OS packages"))
	m = next.(*ProgressModel)

	view := m.View()
	assert.Contains(t, view, "✓")
	assert.Contains(t, view, "Validating")
	assert.Contains(t, view, "Installing OS Packages")
	assert.Contains(t, view, "installing 3 OS packages")
	assert.Contains(t, view, "Enabling Service")
}
