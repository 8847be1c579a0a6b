package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start tracking in the running watch session",
		Long: `Tell the running watch session to capture a fresh baseline and begin
tracking files that appear in the source directory.

Files already present are not tracked; only files newer than the
baseline are. Starting while tracking is already active restarts the
watcher, which picks up a source directory changed with trackcopy set.`,
		Args: cobra.NoArgs,
		RunE: runStart,
	}
	addClientFlags(cmd)
	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	msg, err := client.StartTracking(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
