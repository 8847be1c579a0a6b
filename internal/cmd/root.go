package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for trackcopy
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trackcopy",
		Short: "Rule-driven tracked-file copier",
		Long: `Trackcopy watches a source directory, tracks files as they appear,
and copies them to a destination under names generated from a pattern
of counter, list, and batch rules.

The watch command runs the long-lived session with its HTTP control
API. start, stop, status, set, tracked, and commit talk to that API;
preview and rules work on the saved settings, and history reads the
copy pass journal.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewStartCommand())
	cmd.AddCommand(NewStopCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewSetCommand())
	cmd.AddCommand(NewTrackedCommand())
	cmd.AddCommand(NewCommitCommand())
	cmd.AddCommand(NewPreviewCommand())
	cmd.AddCommand(NewRulesCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
