package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/display"
)

// NewTrackedCommand creates the tracked command group
func NewTrackedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracked",
		Short: "List the currently tracked files",
		Long: `List the tracked files of the running watch session together with the
names they would receive on the next copy pass and their conflict
state.

Duplicate rows (the same generated name twice in the batch) are shown
in red and block commits; exists rows (name already present in the
destination) are shown in blue and need a collision policy.

Examples:
  trackcopy tracked
  trackcopy tracked --count 50
  trackcopy tracked clear`,
		Args: cobra.NoArgs,
		RunE: runTrackedList,
	}
	addClientFlags(cmd)
	cmd.Flags().Int("count", 10, "Number of most recent tracked files to show (1-1000)")

	cmd.AddCommand(newTrackedClearCommand())
	return cmd
}

func runTrackedList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	count, _ := cmd.Flags().GetInt("count")
	resp, err := client.Tracked(cmd.Context(), count)
	if err != nil {
		return err
	}

	colorOutput := isatty.IsTerminal(os.Stdout.Fd())
	for _, row := range display.FormatTrackedTable(resp.Files, colorOutput) {
		fmt.Fprintln(cmd.OutOrStdout(), row)
	}
	if resp.TotalCount > resp.ReturnedCount {
		fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d tracked files\n",
			resp.ReturnedCount, resp.TotalCount)
	}
	return nil
}

func newTrackedClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the tracked file list",
		Long: `Remove every file from the tracked list without copying anything.
Tracking itself stays in whatever state it was.`,
		Args: cobra.NoArgs,
		RunE: runTrackedClear,
	}
	addClientFlags(cmd)
	return cmd
}

func runTrackedClear(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	msg, err := client.ClearTracked(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
