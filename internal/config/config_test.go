package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
socket: /var/run/poudriered.sock
pidfile: /var/run/poudriered.pid
log_level: debug
operation:
  - status:
      user: ["*"]
  - "*":
      group: [0]
command:
  - bulk:
      user: [1000]
      argument:
        - "-a":
            user: ["*"]
schedule:
  - format: "%H:%M"
    when: "03:00"
    cmd:
      command: bulk
      arguments: -a -j default
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poudriered.conf")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadParsesAFullConfig(t *testing.T) {
	path := writeConfigFile(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/run/poudriered.sock", cfg.Socket)
	assert.Equal(t, "/var/run/poudriered.pid", cfg.PidFile)
	assert.Equal(t, "debug", cfg.LogLevel)

	require.Len(t, cfg.Policy.Operation, 2)
	assert.Equal(t, "status", cfg.Policy.Operation[0].Subject)
	assert.Equal(t, "*", cfg.Policy.Operation[1].Subject)

	require.Len(t, cfg.Policy.Command, 1)
	require.Len(t, cfg.Policy.Command[0].Arguments, 1)
	assert.Equal(t, "-a", cfg.Policy.Command[0].Arguments[0].Subject)

	require.Len(t, cfg.Schedule, 1)
	assert.Equal(t, "%H:%M", cfg.Schedule[0].Format)
	assert.Equal(t, "03:00", cfg.Schedule[0].When)
	cmdNode, ok := cfg.Schedule[0].Cmd.Get("command")
	require.True(t, ok)
	cmd, _ := cmdNode.AsString()
	assert.Equal(t, "bulk", cmd)
}

func TestLoadRequiresSocket(t *testing.T) {
	path := writeConfigFile(t, "pidfile: /var/run/poudriered.pid\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "'socket' not found")
}

func TestLoadRequiresPidFile(t *testing.T) {
	path := writeConfigFile(t, "socket: /var/run/poudriered.sock\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "'pidfile' not found")
}

func TestLoadDefaultsLogLevelToInfo(t *testing.T) {
	path := writeConfigFile(t, "socket: /s\npidfile: /p\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadSkipsIncompleteScheduleEntries(t *testing.T) {
	path := writeConfigFile(t, `
socket: /s
pidfile: /p
schedule:
  - format: "%H:%M"
    when: ""
    cmd:
      command: bulk
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Schedule)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "socket: [unterminated\n")

	_, err := Load(path)
	assert.Error(t, err)
}
