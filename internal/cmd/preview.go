package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/engine"
	"github.com/fernwright/trackcopy/internal/pattern"
)

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview upcoming generated names",
		Long: `Show the names the naming pattern will generate next, without
consuming any rule state.

The preview replays the saved rules against the saved (or overridden)
pattern. Counter and list rules replay from their starting state, batch
rules keep their persisted value, so the listing matches what the next
copy pass will produce.

Examples:
  trackcopy preview
  trackcopy preview -n 5
  trackcopy preview --pattern "shot_{counter}_{side}"`,
		Args: cobra.NoArgs,
		RunE: runPreview,
	}
	cmd.Flags().IntP("number", "n", 10, "How many names to preview")
	cmd.Flags().String("pattern", "", "Preview this pattern instead of the saved one")
	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	st, _, err := loadSettingsFile()
	if err != nil {
		return err
	}

	set, err := st.RuleSet()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	patternStr := st.NamingPattern
	if cmd.Flags().Changed("pattern") {
		patternStr, _ = cmd.Flags().GetString("pattern")
	}

	n, _ := cmd.Flags().GetInt("number")
	if n < 1 {
		n = 1
	}

	if missing := pattern.MissingTags(patternStr, set); len(missing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: no rules for tags: %s\n\n",
			strings.Join(missing, ", "))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Next %d names for %q:\n", n, patternStr)
	for i, name := range engine.PreviewAll(patternStr, set, n) {
		fmt.Fprintf(cmd.OutOrStdout(), "  %2d. %s\n", i+1, name)
	}
	return nil
}
