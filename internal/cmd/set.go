package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSetCommand creates the set command group
func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the running session's paths and pattern",
		Long: `Update the source directory, destination directory, or naming pattern
of the running watch session.

Changing the source directory does not move an active watcher; run
trackcopy start to watch the new directory. Changes are persisted to
the settings file when the session commits or shuts down.

Examples:
  trackcopy set source /ingest/raw
  trackcopy set dest /archive/renamed
  trackcopy set pattern "shot_{counter}_{side}"`,
	}

	cmd.AddCommand(newSetSourceCommand())
	cmd.AddCommand(newSetDestCommand())
	cmd.AddCommand(newSetPatternCommand())

	return cmd
}

func newSetSourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source <dir>",
		Short: "Set the watched source directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			if err := client.SetSourcePath(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Source directory set to %s\n", args[0])
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

func newSetDestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dest <dir>",
		Short: "Set the copy destination directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			if err := client.SetDestinationPath(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Destination directory set to %s\n", args[0])
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

func newSetPatternCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern <pattern>",
		Short: "Set the naming pattern",
		Long: `Set the naming pattern. {tag} placeholders are filled by the matching
rules; unknown tags block commits unless --allow-missing-tags is given
there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			if err := client.SetNamePattern(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name pattern set to %s\n", args[0])
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}
