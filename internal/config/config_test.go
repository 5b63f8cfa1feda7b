package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultGatewayBaseURL, cfg.Gateway.BaseURL)
	assert.Equal(t, "claude", cfg.Answerer.Provider)
	assert.Equal(t, 1024, cfg.Answerer.MaxTokens)
	assert.Equal(t, "sqlite", cfg.Transcript.Store)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
gateway:
  instanceId: "1101000001"
  token: "secret"
answerer:
  provider: "ollama"
  model: "llama3"
  endpoint: "http://localhost:11434"
characters:
  default: "elon_musk"
session:
  capacity: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1101000001", cfg.Gateway.InstanceID)
	assert.Equal(t, "secret", cfg.Gateway.Token)
	assert.Equal(t, "ollama", cfg.Answerer.Provider)
	assert.Equal(t, "llama3", cfg.Answerer.Model)
	assert.Equal(t, "elon_musk", cfg.Characters.Default)
	assert.Equal(t, 100, cfg.Session.Capacity)

	// Defaults still fill gaps
	assert.Equal(t, DefaultGatewayBaseURL, cfg.Gateway.BaseURL)
	assert.Equal(t, 20, cfg.Gateway.ReceiveTimeoutSec)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "gateway: [not a map")

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHARBOT_GATEWAY_ID", "9900000042")
	t.Setenv("CHARBOT_DEFAULT_CHARACTER", "sherlock")
	t.Setenv("CHARBOT_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9900000042", cfg.Gateway.InstanceID)
	assert.Equal(t, "sherlock", cfg.Characters.Default)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsSensitiveFields(t *testing.T) {
	t.Setenv("TEST_GATEWAY_TOKEN", "tok-123")
	path := writeConfig(t, `
gateway:
  instanceId: "1"
  token: "${TEST_GATEWAY_TOKEN}"
answerer:
  apiKey: "${UNSET_VAR_XYZ}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Gateway.Token)
	// Unset variables are left as-is
	assert.Equal(t, "${UNSET_VAR_XYZ}", cfg.Answerer.APIKey)
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := Defaults()
	issues := Validate(&cfg)

	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.Contains(t, paths, "gateway.instanceId")
	assert.Contains(t, paths, "gateway.token")
	assert.Contains(t, paths, "answerer.apiKey")
}

func TestValidate_CleanConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.InstanceID = "1101000001"
	cfg.Gateway.Token = "tok"
	cfg.Answerer.Provider = "mock"

	assert.Empty(t, Validate(&cfg))
}

func TestValidate_BadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.InstanceID = "1"
	cfg.Gateway.Token = "t"
	cfg.Answerer.Provider = "gpt4all"
	cfg.Session.Capacity = -1
	cfg.Console.Port = 70000
	cfg.Transcript.Store = "postgres"
	cfg.Logging.Level = "verbose"

	issues := Validate(&cfg)
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.Contains(t, paths, "answerer.provider")
	assert.Contains(t, paths, "session.capacity")
	assert.Contains(t, paths, "console.port")
	assert.Contains(t, paths, "transcript.store")
	assert.Contains(t, paths, "logging.level")
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARBOT_HOME", dir)

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, dir, paths.Base)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(dir, "characters"), paths.Characters)

	require.NoError(t, paths.EnsureDirs())
	assert.DirExists(t, paths.Data)
	assert.DirExists(t, paths.Characters)
}

func TestConfigPath_Helpers(t *testing.T) {
	raw := map[string]any{}

	path, err := ParseConfigPath("answerer.model")
	require.NoError(t, err)

	SetValueAtPath(raw, path, "llama3")
	val, ok := GetValueAtPath(raw, path)
	require.True(t, ok)
	assert.Equal(t, "llama3", val)

	assert.True(t, UnsetValueAtPath(raw, path))
	_, ok = GetValueAtPath(raw, path)
	assert.False(t, ok)
}

func TestParseConfigPath_Invalid(t *testing.T) {
	_, err := ParseConfigPath("")
	assert.Error(t, err)

	_, err = ParseConfigPath("gateway..token")
	assert.Error(t, err)
}
