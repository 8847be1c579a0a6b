package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/display"
	"github.com/fernwright/trackcopy/internal/rule"
	"github.com/fernwright/trackcopy/internal/settings"
)

// NewRulesCommand creates the rules command group
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the naming rules",
		Long: `Manage the rules that fill the {tag} placeholders of the naming
pattern.

  counter  numeric sequence: starts at start, advances by increment
           every step evaluations, wraps back to start past an
           optional min/max bound
  list     cycles through fixed values, advancing every step
           evaluations
  batch    numeric value shared by every file of one copy pass,
           advancing once per pass

Changes are written to the settings file. A running watch session keeps
the rules it loaded until it is restarted.`,
	}

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesAddCommand())
	cmd.AddCommand(newRulesRemoveCommand())
	cmd.AddCommand(newRulesRenameCommand())
	cmd.AddCommand(newRulesMoveCommand())

	return cmd
}

func newRulesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadSettingsFile()
			if err != nil {
				return err
			}
			for _, row := range display.FormatRules(st.Rules) {
				fmt.Fprintln(cmd.OutOrStdout(), row)
			}
			return nil
		},
	}
}

func newRulesAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <tag>",
		Short: "Add a rule",
		Long: `Add a naming rule for the {tag} placeholder. Tags must be unique
across the rule set.

Examples:
  trackcopy rules add shot --kind counter --start 10 --increment 10
  trackcopy rules add side --kind list --values L,R
  trackcopy rules add roll --kind batch --step 2
  trackcopy rules add take --kind counter --max 99`,
		Args: cobra.ExactArgs(1),
		RunE: runRulesAdd,
	}
	cmd.Flags().String("kind", "counter", "Rule kind: counter, list, or batch")
	cmd.Flags().Int("start", 1, "Starting value (counter, batch)")
	cmd.Flags().Int("increment", 1, "Amount added per advance (counter, batch)")
	cmd.Flags().Int("step", 1, "Evaluations (counter, list) or passes (batch) per advance")
	cmd.Flags().Int("max", 0, "Wrap back to start above this value (counter, batch)")
	cmd.Flags().Int("min", 0, "Wrap back to start below this value (counter, batch)")
	cmd.Flags().StringSlice("values", nil, "Comma-separated values (list)")
	return cmd
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	st, path, err := loadSettingsFile()
	if err != nil {
		return err
	}

	kindStr, _ := cmd.Flags().GetString("kind")
	start, _ := cmd.Flags().GetInt("start")
	increment, _ := cmd.Flags().GetInt("increment")
	step, _ := cmd.Flags().GetInt("step")

	snap := rule.Snapshot{
		Kind:       rule.Kind(strings.ToLower(strings.TrimSpace(kindStr))),
		Tag:        args[0],
		StartValue: start,
		Increment:  increment,
		Step:       step,
	}
	if cmd.Flags().Changed("max") {
		v, _ := cmd.Flags().GetInt("max")
		snap.MaxValue = &v
	}
	if cmd.Flags().Changed("min") {
		v, _ := cmd.Flags().GetInt("min")
		snap.MinValue = &v
	}
	if values, _ := cmd.Flags().GetStringSlice("values"); len(values) > 0 {
		snap.Values = values
	}

	r, err := rule.FromSnapshot(snap)
	if err != nil {
		return err
	}

	return updateRules(cmd, st, path, func(set *rule.Set) error {
		if err := set.Add(r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s rule {%s}\n", snap.Kind, snap.Tag)
		return nil
	})
}

func newRulesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tag>",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, path, err := loadSettingsFile()
			if err != nil {
				return err
			}
			return updateRules(cmd, st, path, func(set *rule.Set) error {
				if err := set.Remove(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed rule {%s}\n", args[0])
				return nil
			})
		},
	}
}

func newRulesRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tag> <new-tag>",
		Short: "Rename a rule's tag",
		Long: `Rename a rule's tag. Occurrences of the old tag in the naming
pattern are not rewritten; update the pattern separately.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, path, err := loadSettingsFile()
			if err != nil {
				return err
			}
			return updateRules(cmd, st, path, func(set *rule.Set) error {
				if err := set.Rename(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed rule {%s} to {%s}\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newRulesMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <tag> <position>",
		Short: "Move a rule to a position in the evaluation order",
		Long: `Move a rule to the given 1-based position. Rules are evaluated in
set order, which matters when several rules share step boundaries.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}

			st, path, err := loadSettingsFile()
			if err != nil {
				return err
			}
			return updateRules(cmd, st, path, func(set *rule.Set) error {
				if err := set.Move(args[0], pos-1); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved rule {%s} to position %d\n", args[0], pos)
				return nil
			})
		},
	}
}

// updateRules applies fn to the saved rule set and persists the result.
// The settings file is only written when fn succeeds.
func updateRules(cmd *cobra.Command, st *settings.Settings, path string, fn func(*rule.Set) error) error {
	set, err := st.RuleSet()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	if err := fn(set); err != nil {
		return err
	}

	st.SetRuleSet(set)
	if err := st.Save(path); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
