package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	content := "logging:\n  level: debug\n  format: json\n  file: /tmp/corewp.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".corewp.yaml"), []byte(content), 0o600))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", settings.Logging.Level)
	assert.Equal(t, "json", settings.Logging.Format)
	assert.Equal(t, "/tmp/corewp.log", settings.Logging.File)
}

func TestLoadSettingsPartial(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".corewp.yaml"), []byte("logging:\n  level: warn\n"), 0o600))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.Logging.Level)
	assert.Equal(t, "console", settings.Logging.Format, "unset format keeps its default")
}

func TestLoadSettingsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".corewp.yaml"), []byte("logging: ["), 0o600))

	_, err := LoadSettings(dir)
	require.Error(t, err)
}

func TestToLoggingConfig(t *testing.T) {
	ls := LoggingSettings{Level: "debug", Format: "json", File: "x.log"}
	cfg := ls.ToLoggingConfig()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "x.log", cfg.File)
}
