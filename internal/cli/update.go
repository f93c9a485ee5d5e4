package cli

import (
	"github.com/spf13/cobra"
)

const updateLong = `Re-resolve the configured version constraint against the published
version list and replace the installed payload when a newer satisfying
version exists.

Unlike install, update never keeps a merely-compatible payload: the
constraint is always resolved in full and the target replaced whenever
the result differs from what is installed.`

// NewUpdateCmd creates the update command, the pre-update lifecycle hook
// of the host tool.
func NewUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update to the newest satisfying core version",
		Long:  updateLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLifecycle(cmd, true)
		},
	}
}
