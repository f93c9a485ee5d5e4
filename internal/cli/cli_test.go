package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd("1.2.3")
	require.NotNil(t, root)
	assert.Equal(t, "corewp", root.Use)
	assert.Equal(t, "1.2.3", root.Version)

	names := make([]string, 0, 2)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "install")
	assert.Contains(t, names, "update")
}

func TestPersistentFlags(t *testing.T) {
	root := NewRootCmd("dev")
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.PersistentFlags().Lookup("manifest-dir"))
}

func TestInstallMissingManifest(t *testing.T) {
	root := NewRootCmd("dev")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"install", "--manifest-dir", t.TempDir()})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "loading host manifest")
}

// An exact pin matching the installed version completes without any
// network access, so the full command can run offline.
func TestInstallExactPinAlreadyPresent(t *testing.T) {
	dir := t.TempDir()

	composer := `{
		"extra": {
			"corewp": {"version": "4.7", "target-dir": "wp"}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(composer), 0o600))

	// The relative target dir anchors to the manifest directory, not the
	// working directory.
	includes := filepath.Join(dir, "wp", "wp-includes")
	require.NoError(t, os.MkdirAll(includes, 0o750))
	versionFile := "<?php\n$wp_version = '4.7';\n"
	require.NoError(t, os.WriteFile(filepath.Join(includes, "version.php"), []byte(versionFile), 0o600))

	root := NewRootCmd("dev")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"install", "--manifest-dir", dir})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "already present")
}
