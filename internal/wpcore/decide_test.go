package wpcore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVersionFile(t *testing.T, targetDir, version string) {
	t.Helper()
	dir := filepath.Join(targetDir, "wp-includes")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	content := "<?php\n$wp_version = '" + version + "';\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.php"), []byte(content), 0o600))
}

func TestProbeInstalled(t *testing.T) {
	t.Run("detects declared version", func(t *testing.T) {
		dir := t.TempDir()
		writeVersionFile(t, dir, "4.7.2")

		state := ProbeInstalled(dir)
		require.True(t, state.Detected)
		assert.Equal(t, "4.7.2", state.Version.String())
	})

	t.Run("missing file", func(t *testing.T) {
		assert.False(t, ProbeInstalled(t.TempDir()).Detected)
	})

	t.Run("file without assignment", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "wp-includes")
		require.NoError(t, os.MkdirAll(sub, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "version.php"), []byte("<?php\n"), 0o600))

		assert.False(t, ProbeInstalled(dir).Detected)
	})

	t.Run("normalizes declared version", func(t *testing.T) {
		dir := t.TempDir()
		writeVersionFile(t, dir, "4.7.0")

		state := ProbeInstalled(dir)
		require.True(t, state.Detected)
		assert.Equal(t, "4.7", state.Version.String())
	})
}

func installedAt(raw string) InstalledState {
	return InstalledState{Version: Normalize(raw), Detected: true}
}

func TestDecideNoInstalledVersion(t *testing.T) {
	catalog := catalogOf("4.7", "4.6")
	engine := NewDecisionEngine(NewResolver(catalog))

	decision, err := engine.Decide(context.Background(), "latest", InstalledState{}, false)
	require.NoError(t, err)
	assert.True(t, decision.ShouldInstall)
	assert.Equal(t, "4.7", decision.Version.String())
}

func TestDecideExactMatchShortCircuits(t *testing.T) {
	catalog := catalogOf()
	engine := NewDecisionEngine(NewResolver(catalog))

	decision, err := engine.Decide(context.Background(), "4.7", installedAt("4.7"), false)
	require.NoError(t, err)
	assert.False(t, decision.ShouldInstall)
	assert.Zero(t, catalog.calls, "matching exact pin must not query the catalog")
}

func TestDecideInstallContextLenient(t *testing.T) {
	catalog := catalogOf("4.7", "4.6", "4.5")
	engine := NewDecisionEngine(NewResolver(catalog))

	decision, err := engine.Decide(context.Background(), ">=4.5", installedAt("4.6"), false)
	require.NoError(t, err)
	assert.False(t, decision.ShouldInstall, "install context keeps a satisfying version")
	assert.Equal(t, "4.6", decision.Version.String())
	assert.Zero(t, catalog.calls, "satisfied range in install context needs no catalog")
}

func TestDecideUpdateContextResolves(t *testing.T) {
	catalog := catalogOf("4.7", "4.6", "4.5")
	engine := NewDecisionEngine(NewResolver(catalog))

	decision, err := engine.Decide(context.Background(), ">=4.5", installedAt("4.6"), true)
	require.NoError(t, err)
	assert.True(t, decision.ShouldInstall, "update context replaces with the newest satisfying version")
	assert.Equal(t, "4.7", decision.Version.String())
}

func TestDecideUpdateAlreadyNewest(t *testing.T) {
	engine := NewDecisionEngine(NewResolver(catalogOf("4.7", "4.6")))

	decision, err := engine.Decide(context.Background(), ">=4.6", installedAt("4.7"), true)
	require.NoError(t, err)
	assert.False(t, decision.ShouldInstall)
}

func TestDecideInstallDifferentExactPin(t *testing.T) {
	engine := NewDecisionEngine(NewResolver(catalogOf()))

	decision, err := engine.Decide(context.Background(), "4.8", installedAt("4.7"), false)
	require.NoError(t, err)
	assert.True(t, decision.ShouldInstall)
	assert.Equal(t, "4.8", decision.Version.String())
}

func TestDecidePropagatesResolutionFailure(t *testing.T) {
	engine := NewDecisionEngine(NewResolver(catalogOf()))

	_, err := engine.Decide(context.Background(), "latest", InstalledState{}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
