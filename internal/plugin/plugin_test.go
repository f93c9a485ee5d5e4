package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewp/corewp/internal/manifest"
	"github.com/corewp/corewp/internal/wpcore"
)

// fakeInstaller records install invocations.
type fakeInstaller struct {
	calls []wpcore.Version
	err   error
}

func (f *fakeInstaller) Install(_ context.Context, v wpcore.Version, _ wpcore.InstallRequest) error {
	f.calls = append(f.calls, v)
	return f.err
}

// fixedCatalog serves a static version list.
type fixedCatalog struct {
	versions []wpcore.Version
}

func (c *fixedCatalog) Versions(_ context.Context) []wpcore.Version {
	return c.versions
}

func newTestPlugin(t *testing.T, installer payloadInstaller, catalogVersions ...string) *Plugin {
	t.Helper()
	versions := make([]wpcore.Version, len(catalogVersions))
	for i, raw := range catalogVersions {
		versions[i] = wpcore.Normalize(raw)
	}
	resolver := wpcore.NewResolver(&fixedCatalog{versions: versions})
	return NewWith(wpcore.NewDecisionEngine(resolver), installer)
}

func manifestFor(targetDir, constraint string) *manifest.Manifest {
	extra := map[string]any{
		"corewp": map[string]any{
			"target-dir": targetDir,
		},
	}
	if constraint != "" {
		extra["corewp"].(map[string]any)["version"] = constraint
	}
	return &manifest.Manifest{Extra: extra}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not-started", StateNotStarted.String())
	assert.Equal(t, "installer-registered", StateInstallerRegistered.String())
	assert.Equal(t, "installed", StateInstalled.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestHookBeforeActivation(t *testing.T) {
	p := newTestPlugin(t, &fakeInstaller{}, "4.7")

	err := p.Install(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotActivated)
}

func TestActivateResolvesConfigOnce(t *testing.T) {
	p := newTestPlugin(t, &fakeInstaller{}, "4.7")
	ctx := context.Background()

	p.Activate(ctx, manifestFor("site/wp", "4.7"))
	require.Equal(t, StateInstallerRegistered, p.State())
	assert.Equal(t, "site/wp", p.Config().TargetDir)

	// A second activation must not overwrite the resolved config.
	p.Activate(ctx, manifestFor("other/dir", "4.8"))
	assert.Equal(t, "site/wp", p.Config().TargetDir)
}

func TestActivateAnchorsRelativeTarget(t *testing.T) {
	p := newTestPlugin(t, &fakeInstaller{}, "4.7")

	m := manifestFor("wp", "4.7")
	m.Dir = filepath.Join("srv", "site")
	p.Activate(context.Background(), m)

	assert.Equal(t, filepath.Join("srv", "site", "wp"), p.Config().TargetDir)
}

func TestInstallRunsWhenNothingInstalled(t *testing.T) {
	installer := &fakeInstaller{}
	p := newTestPlugin(t, installer, "4.7", "4.6")
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	p.Activate(ctx, manifestFor(target, ""))

	require.NoError(t, p.Install(ctx))
	require.Len(t, installer.calls, 1)
	assert.Equal(t, "4.7", installer.calls[0].String())
	assert.Equal(t, StateInstalled, p.State())
}

func TestHooksRunOncePerProcess(t *testing.T) {
	installer := &fakeInstaller{}
	p := newTestPlugin(t, installer, "4.7")
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	p.Activate(ctx, manifestFor(target, ""))

	require.NoError(t, p.Install(ctx))
	require.NoError(t, p.Install(ctx))
	require.NoError(t, p.Update(ctx))

	assert.Len(t, installer.calls, 1, "state machine must gate repeat hooks")
}

func TestInstallKeepsSatisfyingVersion(t *testing.T) {
	installer := &fakeInstaller{}
	p := newTestPlugin(t, installer, "4.7", "4.6")
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	writeVersionFile(t, target, "4.6")
	p.Activate(ctx, manifestFor(target, ">=4.5"))

	require.NoError(t, p.Install(ctx))
	assert.Empty(t, installer.calls, "install context keeps a compatible payload")
	assert.Equal(t, StateInstalled, p.State())
}

func TestUpdateReplacesSatisfyingVersion(t *testing.T) {
	installer := &fakeInstaller{}
	p := newTestPlugin(t, installer, "4.7", "4.6")
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	writeVersionFile(t, target, "4.6")
	p.Activate(ctx, manifestFor(target, ">=4.5"))

	require.NoError(t, p.Update(ctx))
	require.Len(t, installer.calls, 1)
	assert.Equal(t, "4.7", installer.calls[0].String())
}

func TestInstallerFailureKeepsStateRetryable(t *testing.T) {
	installer := &fakeInstaller{err: errors.New("disk full")}
	p := newTestPlugin(t, installer, "4.7")
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	p.Activate(ctx, manifestFor(target, ""))

	require.Error(t, p.Install(ctx))
	assert.Equal(t, StateInstallerRegistered, p.State(), "failed run must stay retryable")

	installer.err = nil
	require.NoError(t, p.Install(ctx))
	assert.Equal(t, StateInstalled, p.State())
}

func TestResolutionFailurePropagates(t *testing.T) {
	p := newTestPlugin(t, &fakeInstaller{}) // empty catalog
	ctx := context.Background()

	target := filepath.Join(t.TempDir(), "wp")
	p.Activate(ctx, manifestFor(target, ""))

	err := p.Install(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, wpcore.ErrCatalogUnavailable)
}

func writeVersionFile(t *testing.T, targetDir, version string) {
	t.Helper()
	dir := filepath.Join(targetDir, "wp-includes")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	content := "<?php\n$wp_version = '" + version + "';\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.php"), []byte(content), 0o600))
}
