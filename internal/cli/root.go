// Package cli wires the host tool's lifecycle hooks to cobra commands.
// The install and update commands map directly onto the plugin adapter's
// pre-install and pre-update entry points.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/corewp/corewp/internal/config"
	"github.com/corewp/corewp/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

const rootExample = `  # Install the core payload declared by composer.json
  corewp install

  # Update to the newest version satisfying the configured constraint
  corewp update

  # Operate on a manifest in another directory
  corewp install --manifest-dir /srv/site`

// NewRootCmd creates the root cobra command for the corewp CLI.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "corewp",
		Short:         "WordPress core fetcher and installer",
		Long:          "corewp resolves a WordPress core version from composer.json and places it into the configured target directory, preserving wp-config.php and wp-content across reinstalls.",
		Version:       ver,
		Example:       rootExample,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging to the console")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("manifest-dir", ".", "Directory containing composer.json")

	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewUpdateCmd())

	return cmd
}

// setupContext builds the run's logger from the settings file and flags,
// attaches a trace ID, and stores everything on the command context.
func setupContext(cmd *cobra.Command) (context.Context, error) {
	manifestDir, _ := cmd.Flags().GetString("manifest-dir")

	settings, err := config.LoadSettings(manifestDir)
	if err != nil {
		return nil, err
	}

	loggingCfg := settings.Logging
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loggingCfg.Level = level
	}

	base := logging.NewLogger(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(base, "cli")

	if loggingCfg.File != "" && isTerminal(os.Stderr) {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), loggingCfg.File)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)

	runLogger := base.With().Str("trace_id", traceID).Logger()
	ctx = runLogger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().
		Str("command", cmd.Name()).
		Str("trace_id", traceID).
		Msg("command started")

	return ctx, nil
}

// printError gives the operator one clear line on stderr; details are in
// the structured log.
func printError(cmd *cobra.Command, err error) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}
