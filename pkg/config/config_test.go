package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")

	assert.Equal(t, "deploy", cfg.User)
	assert.Equal(t, "/opt/bot", cfg.AppDir)
	assert.Equal(t, "stars-bot", cfg.ServiceName)
	assert.Equal(t, []string{"playwright", "aiohttp", "playwright-stealth", "colorama"}, cfg.FallbackPyDeps)
	assert.Equal(t, []string{"webkit"}, cfg.Browsers)
	assert.Equal(t, 5, cfg.RestartSec)
	assert.Equal(t, "1", cfg.Environment["PYTHONUNBUFFERED"])
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")

	assert.Equal(t, "/opt/bot/venv", cfg.VenvDir())
	assert.Equal(t, "/opt/bot/venv/bin/python3", cfg.PythonPath())
	assert.Equal(t, "/opt/bot/requirements.txt", cfg.RequirementsPath())
	assert.Equal(t, "/opt/bot/script.py", cfg.EntrypointPath())
	assert.Equal(t, "stars-bot.service", cfg.UnitName())
	assert.Equal(t, "/etc/systemd/system/stars-bot.service", cfg.UnitPath())
	assert.Equal(t, "/opt/bot/venv/bin/python3 /opt/bot/script.py", cfg.ExecStart())
}

func TestLoadWithoutOverride(t *testing.T) {
	cfg, err := Load("deploy", "/opt/bot", "")
	require.NoError(t, err)
	assert.Equal(t, Default("deploy", "/opt/bot"), cfg)
}

func TestLoadWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provision.yaml")
	override := `
service_name: my-bot
restart_sec: 10
browsers:
  - chromium
environment:
  LOG_LEVEL: debug
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0644))

	cfg, err := Load("deploy", "/opt/bot", path)
	require.NoError(t, err)

	assert.Equal(t, "my-bot", cfg.ServiceName)
	assert.Equal(t, 10, cfg.RestartSec)
	assert.Equal(t, []string{"chromium"}, cfg.Browsers)
	// Overrides merge into the default environment
	assert.Equal(t, "debug", cfg.Environment["LOG_LEVEL"])
	assert.Equal(t, "1", cfg.Environment["PYTHONUNBUFFERED"])
	// Unset fields keep defaults
	assert.Equal(t, DefaultDescription, cfg.Description)
	assert.Equal(t, []string{"python3", "python3-venv", "python3-pip"}, cfg.AptPackages)
	// CLI parameters are never overridable
	assert.Equal(t, "deploy", cfg.User)
	assert.Equal(t, "/opt/bot", cfg.AppDir)
}

func TestLoadMissingOverrideFile(t *testing.T) {
	_, err := Load("deploy", "/opt/bot", "/nonexistent/provision.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provision.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service_name: [unclosed"), 0644))

	_, err := Load("deploy", "/opt/bot", path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	assert.NoError(t, cfg.Validate())
}

func TestValidateUser(t *testing.T) {
	assert.NoError(t, ValidateUser("deploy"))
	assert.NoError(t, ValidateUser("bot_user"))
	assert.NoError(t, ValidateUser("_svc"))

	assert.Error(t, ValidateUser(""))
	assert.Error(t, ValidateUser("Deploy"))
	assert.Error(t, ValidateUser("1user"))
	assert.Error(t, ValidateUser("user name"))
	assert.Error(t, ValidateUser("user\nExecStart=/bin/evil"))
}

func TestValidateAppDir(t *testing.T) {
	assert.NoError(t, ValidateAppDir("/opt/bot"))

	assert.Error(t, ValidateAppDir(""))
	assert.Error(t, ValidateAppDir("relative/path"))
	assert.Error(t, ValidateAppDir("/opt/bot\nUser=root"))
}

func TestValidateServiceName(t *testing.T) {
	assert.NoError(t, ValidateServiceName("stars-bot"))
	assert.NoError(t, ValidateServiceName("my.bot"))

	assert.Error(t, ValidateServiceName(""))
	assert.Error(t, ValidateServiceName("stars-bot.service"))
	assert.Error(t, ValidateServiceName("stars bot"))
	assert.Error(t, ValidateServiceName("stars/bot"))
	assert.Error(t, ValidateServiceName(`stars\bot`))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	cfg.Environment["BAD KEY"] = "x"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNewlineEnvironmentValue(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	cfg.Environment["TOKEN"] = "x\nExecStart=/bin/evil"
	assert.Error(t, cfg.Validate())

	cfg = Default("deploy", "/opt/bot")
	cfg.Environment["TOKEN"] = "x\rExecStart=/bin/evil"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNewlineDescription(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	cfg.Description = "bot\nExecStartPre=/bin/evil"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNewlineEntrypoint(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	cfg.Entrypoint = "script.py\nUser=root"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeRestartSec(t *testing.T) {
	cfg := Default("deploy", "/opt/bot")
	cfg.RestartSec = -1
	assert.Error(t, cfg.Validate())
}
