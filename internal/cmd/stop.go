package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking in the running watch session",
		Long: `Tell the running watch session to stop watching the source directory.

The tracked file list survives; commit still copies it. Stopping an
already stopped session is a no-op.`,
		Args: cobra.NoArgs,
		RunE: runStop,
	}
	addClientFlags(cmd)
	return cmd
}

func runStop(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	msg, err := client.StopTracking(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
