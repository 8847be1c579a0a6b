package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/display"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the running watch session",
		Long: `Query the running watch session for its tracking state, tracked file
count, and the configured paths and naming pattern.

Requires a watch session serving the control API (see trackcopy watch).`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
	addClientFlags(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	st, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	display.WriteStatus(cmd.OutOrStdout(), st)
	return nil
}
