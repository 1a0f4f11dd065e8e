package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Memory.ContextWindow)
	assert.Equal(t, 5, cfg.Memory.RecentCount)
	assert.True(t, cfg.BuiltinsEnabled())
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "agent.json", `{
		"agent": {"name": "Alice", "builtins": false},
		"memory": {"context_window": 20}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", cfg.Agent.Name)
	assert.Equal(t, "helpful assistant", cfg.Agent.Personality)
	assert.False(t, cfg.BuiltinsEnabled())
	assert.Equal(t, 20, cfg.Memory.ContextWindow)
	assert.Equal(t, 5, cfg.Memory.RecentCount)
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("AGENT_NAME", "Bob")
	path := writeConfig(t, "agent.yaml", `
agent:
  name: ${AGENT_NAME}
  personality: ${AGENT_PERSONALITY:curious helper}
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Bob", cfg.Agent.Name)
	assert.Equal(t, "curious helper", cfg.Agent.Personality)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"memory": {"context_window": -1}}`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "broken.json", `{"agent":`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
