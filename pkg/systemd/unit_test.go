package systemd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnit() *Unit {
	u := NewServiceUnit(
		"stars-bot.service",
		"Playerok Stars Bot",
		"deploy",
		"/opt/bot",
		"/opt/bot/venv/bin/python3 /opt/bot/script.py",
	)
	u.Environment["PYTHONUNBUFFERED"] = "1"
	return u
}

func TestNewServiceUnitDefaults(t *testing.T) {
	u := testUnit()

	assert.Equal(t, "network.target", u.After)
	assert.Equal(t, "simple", u.Type)
	assert.Equal(t, "on-failure", u.Restart)
	assert.Equal(t, 5, u.RestartSec)
	assert.Equal(t, "multi-user.target", u.WantedBy)
}

func TestRender(t *testing.T) {
	data, err := testUnit().Render()
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[Unit]")
	assert.Contains(t, content, "Description=Playerok Stars Bot\n")
	assert.Contains(t, content, "After=network.target\n")
	assert.Contains(t, content, "[Service]")
	assert.Contains(t, content, "Type=simple\n")
	assert.Contains(t, content, "User=deploy\n")
	assert.Contains(t, content, "WorkingDirectory=/opt/bot\n")
	assert.Contains(t, content, "ExecStart=/opt/bot/venv/bin/python3 /opt/bot/script.py\n")
	assert.Contains(t, content, "Restart=on-failure\n")
	assert.Contains(t, content, "RestartSec=5\n")
	assert.Contains(t, content, "Environment=PYTHONUNBUFFERED=1\n")
	assert.Contains(t, content, "[Install]")
	assert.Contains(t, content, "WantedBy=multi-user.target\n")
}

func TestRenderDeterministic(t *testing.T) {
	u := testUnit()
	u.Environment["ZEBRA"] = "z"
	u.Environment["ALPHA"] = "a"
	u.Environment["MIDDLE"] = "m"

	first, err := u.Render()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := u.Render()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderEnvironmentSorted(t *testing.T) {
	u := testUnit()
	u.Environment["ZEBRA"] = "z"
	u.Environment["ALPHA"] = "a"

	data, err := u.Render()
	require.NoError(t, err)

	content := string(data)
	alpha := strings.Index(content, "Environment=ALPHA=a")
	unbuffered := strings.Index(content, "Environment=PYTHONUNBUFFERED=1")
	zebra := strings.Index(content, "Environment=ZEBRA=z")

	require.GreaterOrEqual(t, alpha, 0)
	assert.Less(t, alpha, unbuffered)
	assert.Less(t, unbuffered, zebra)
}

func TestOptionsOrder(t *testing.T) {
	opts := testUnit().Options()

	require.NotEmpty(t, opts)
	assert.Equal(t, "Unit", opts[0].Section)
	assert.Equal(t, "Description", opts[0].Name)
	assert.Equal(t, "Install", opts[len(opts)-1].Section)
	assert.Equal(t, "WantedBy", opts[len(opts)-1].Name)
}
