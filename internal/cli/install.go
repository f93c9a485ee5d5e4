package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corewp/corewp/internal/manifest"
	"github.com/corewp/corewp/internal/plugin"
	"github.com/corewp/corewp/internal/wpcore"
)

const installLong = `Resolve the configured WordPress core version and place it into the
target directory.

The version constraint comes from composer.json: either the "version"
key of the "corewp" extra block, or the constraint of the first directly
required package of type "wordpress-core". With neither present the
newest published version is installed.

An already-present version that satisfies the constraint is kept as-is;
use "corewp update" to force re-resolution.

wp-config.php at the target's top level and any non-core subdirectory
(wp-content in particular) survive the replacement. Concurrent runs
against the same target directory are unsupported.`

// NewInstallCmd creates the install command, the pre-install lifecycle
// hook of the host tool.
func NewInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the configured core version",
		Long:  installLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLifecycle(cmd, false)
		},
	}
}

// runLifecycle loads the host manifest, activates the plugin adapter,
// and fires the requested lifecycle hook.
func runLifecycle(cmd *cobra.Command, updateContext bool) error {
	ctx, err := setupContext(cmd)
	if err != nil {
		printError(cmd, err)
		return err
	}

	manifestDir, _ := cmd.Flags().GetString("manifest-dir")
	m, err := manifest.Load(manifestDir)
	if err != nil {
		err = fmt.Errorf("loading host manifest: %w", err)
		printError(cmd, err)
		return err
	}

	p := plugin.New()
	p.Activate(ctx, m)
	cfg := p.Config()

	before := wpcore.ProbeInstalled(cfg.TargetDir)

	if updateContext {
		err = p.Update(ctx)
	} else {
		err = p.Install(ctx)
	}
	if err != nil {
		printError(cmd, err)
		return err
	}

	after := wpcore.ProbeInstalled(cfg.TargetDir)
	switch {
	case after.Detected && (!before.Detected || !before.Version.Equal(after.Version)):
		cmd.Printf("✓ WordPress %s installed into %s\n", after.Version, cfg.TargetDir)
	case after.Detected:
		cmd.Printf("✓ WordPress %s already present in %s\n", after.Version, cfg.TargetDir)
	default:
		cmd.Printf("✓ Done\n")
	}

	return nil
}
