package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/config"
	"github.com/fernwright/trackcopy/internal/display"
	"github.com/fernwright/trackcopy/internal/history"
)

// NewHistoryCommand creates the history command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the copy pass journal",
		Long: `Inspect the journal of copy passes.

Every commit records one pass with its destination, pattern, policy,
counts, and per-file outcomes. Failed passes are recorded too, with
the error that stopped them.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

// openHistoryStore opens the journal, or reports that nothing has been
// recorded yet when the database file does not exist. Opening through
// the store would create an empty database as a side effect.
func openHistoryStore() (*history.Store, error) {
	dbPath, err := config.HistoryDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve history path: %w", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, errNoJournal
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

var errNoJournal = errors.New("no copy passes recorded yet")

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent copy passes, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	cmd.Flags().Int("limit", 20, "Number of passes to show (0 = all)")
	return cmd
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		if errors.Is(err, errNoJournal) {
			fmt.Fprintln(cmd.OutOrStdout(), "No copy passes recorded yet")
			return nil
		}
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	batches, err := store.RecentBatches(cmd.Context(), limit)
	if err != nil {
		return err
	}

	colorOutput := isatty.IsTerminal(os.Stdout.Fd())
	for _, row := range display.FormatBatchTable(batches, colorOutput) {
		fmt.Fprintln(cmd.OutOrStdout(), row)
	}
	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pass-id>",
		Short: "Show one pass with its per-file outcomes",
		Long: `Show one recorded pass. The id may be shortened to any unique prefix,
such as the eight characters the list command prints.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	batch, err := findBatch(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	files, err := store.BatchFiles(cmd.Context(), batch.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pass %s\n", batch.ID)
	fmt.Fprintf(out, "  Started: %s\n", batch.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Finished: %s\n", batch.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Destination: %s\n", batch.DestPath)
	fmt.Fprintf(out, "  Pattern: %s\n", batch.Pattern)
	if batch.Policy != "" {
		fmt.Fprintf(out, "  Policy: %s\n", batch.Policy)
	}
	fmt.Fprintf(out, "  Copied: %d  Ignored: %d  Vanished: %d\n",
		batch.Copied, batch.Ignored, batch.Vanished)
	if batch.Error != "" {
		fmt.Fprintf(out, "  Error: %s\n", batch.Error)
	}
	fmt.Fprintln(out)

	colorOutput := isatty.IsTerminal(os.Stdout.Fd())
	for _, row := range display.FormatBatchFiles(files, colorOutput) {
		fmt.Fprintln(out, row)
	}
	return nil
}

// findBatch resolves a full or prefix pass id.
func findBatch(ctx context.Context, store *history.Store, id string) (*history.Batch, error) {
	batch, err := store.GetBatch(ctx, id)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}

	batches, lerr := store.RecentBatches(ctx, 0)
	if lerr != nil {
		return nil, err
	}

	var match *history.Batch
	for _, b := range batches {
		if strings.HasPrefix(b.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("pass id %q is ambiguous", id)
			}
			match = b
		}
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

func newHistoryPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete passes older than the retention window",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPrune,
	}
	cmd.Flags().String("config", "", "Path to config file (default: <trackcopy home>/config.yaml)")
	cmd.Flags().Int("keep-days", 0, "Retention in days (default: history.keep_days from config)")
	return cmd
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	keepDays, _ := cmd.Flags().GetInt("keep-days")
	if !cmd.Flags().Changed("keep-days") {
		cfg, err := loadCLIConfig(cmd)
		if err != nil {
			return err
		}
		keepDays = cfg.History.KeepDays
	}
	if keepDays <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention is disabled (keep-days 0), nothing to prune")
		return nil
	}

	store, err := openHistoryStore()
	if err != nil {
		if errors.Is(err, errNoJournal) {
			fmt.Fprintln(cmd.OutOrStdout(), "No copy passes recorded yet")
			return nil
		}
		return err
	}
	defer store.Close()

	pruned, err := store.Prune(cmd.Context(), keepDays)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d passes older than %d days\n", pruned, keepDays)
	return nil
}
