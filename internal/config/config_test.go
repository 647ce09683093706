package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zigzag-config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `{"environment_variables": {"BUILD_URL": "none", "JOB_NAME": "local"}}`)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "none", f.EnvironmentVariables["BUILD_URL"])
	assert.Equal(t, []string{"BUILD_URL", "JOB_NAME"}, f.VariableNames())
}

func TestLoadDefault(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, f.EnvironmentVariables, "BUILD_URL")
	assert.Equal(t, "Unknown", f.EnvironmentVariables["BUILD_URL"])
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"environment_variables": {`)

	_, err := Load(path)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FailureSyntax, le.Failure)
	assert.Equal(t, 1, le.ExitCode())
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "is not valid JSON")
}

func TestLoadMissingRequiredKey(t *testing.T) {
	path := writeConfig(t, `{"something_else": {}}`)

	_, err := Load(path)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FailureSchema, le.Failure)
	assert.Equal(t, 1, le.ExitCode())
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "does not comply with schema")
}

func TestLoadWrongValueType(t *testing.T) {
	path := writeConfig(t, `{"environment_variables": {"BUILD_NUMBER": 12}}`)

	_, err := Load(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FailureSchema, le.Failure)
}

func TestLoadUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := Load(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FailureRead, le.Failure)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to load '"+path+"' config file!: "))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "no such file or directory")
	assert.True(t, IsLoadError(err))
}

func TestResolvePrefersEnvironment(t *testing.T) {
	f := &File{EnvironmentVariables: map[string]string{"BUILD_URL": "Unknown", "JOB_NAME": "Unknown"}}
	env := map[string]string{"BUILD_URL": "https://ci.example/1"}
	getenv := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	assert.Equal(t, "https://ci.example/1", f.Resolve("BUILD_URL", getenv))
	assert.Equal(t, "Unknown", f.Resolve("JOB_NAME", getenv))
}
