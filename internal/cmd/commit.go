package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/display"
)

// NewCommitCommand creates the commit command
func NewCommitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Copy and rename every tracked file",
		Long: `Ask the running watch session to copy every tracked file to the
destination under its generated name.

When some generated names already exist in the destination the pass
needs a collision policy:

  overwrite  replace the existing files
  rename     keep both by appending _N before the extension
  ignore     skip colliding files; they stay tracked
  cancel     abort without copying anything

Without --policy a colliding pass is cancelled. Pattern tags that have
no rule abort the pass unless --allow-missing-tags keeps them as
literal text.

Examples:
  trackcopy commit
  trackcopy commit --policy rename
  trackcopy commit --policy ignore --allow-missing-tags`,
		Args: cobra.NoArgs,
		RunE: runCommit,
	}
	addClientFlags(cmd)
	cmd.Flags().String("policy", "", "Collision policy: overwrite, rename, ignore, or cancel")
	cmd.Flags().Bool("allow-missing-tags", false, "Copy even when the pattern references unknown tags")
	return cmd
}

func runCommit(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	policy, _ := cmd.Flags().GetString("policy")
	allowMissing, _ := cmd.Flags().GetBool("allow-missing-tags")

	res, err := client.CopyRename(cmd.Context(), policy, allowMissing)
	if err != nil {
		return err
	}

	display.WriteCopySummary(cmd.OutOrStdout(), res)
	return nil
}
