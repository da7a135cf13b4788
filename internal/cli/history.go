package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Ledger string
	Limit  int
	Diff   bool // diff each run against its predecessor
}

// HistoryEntry is one recorded run, optionally with its ABI diff.
type HistoryEntry struct {
	store.Run
	Diff *store.ABIDiff `json:"abi_diff,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [component]",
		Short: "List recorded generation runs",
		Long: `List the runs recorded in the generation ledger, newest first.

With --diff every run is compared with the previous run of the same
component and backend, showing removed, changed and added symbols.

Examples:
  ffigen history --ledger ffigen.db
  ffigen history demo --limit 5 --diff`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			component := ""
			if len(args) == 1 {
				component = args[0]
			}
			return runHistory(cmd.Context(), opts, component, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "ledger database (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "show the ABI diff of each run")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, component string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	path := firstNonEmpty(opts.Ledger, opts.config().Ledger.Path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeLedger,
			errors.WithHint(errors.Newf("ledger not found: %s", path), "record runs with 'ffigen generate --ledger "+path+"'"), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, component, opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, run := range runs {
		entry := HistoryEntry{Run: run}
		if opts.Diff {
			if entry.Diff, err = runDiff(ctx, st, run); err != nil {
				return f.Fail(ExitCommandError, ErrCodeLedger, err, nil)
			}
		}
		entries = append(entries, entry)
	}

	if f.IsJSON() {
		return f.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "#%d %s  %s/%s  %s\n", e.Seq, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Component, e.Backend, e.ID)
		fmt.Fprintf(f.Writer, "  fingerprint: %s\n", e.Fingerprint)
		if e.OutputPath != "" {
			fmt.Fprintf(f.Writer, "  output: %s\n", e.OutputPath)
		}
		if e.Diff != nil {
			printDiff(f.Writer, e.Diff)
		}
	}
	return nil
}

// runDiff diffs run against its predecessor; nil when run is the first.
func runDiff(ctx context.Context, st *store.Store, run store.Run) (*store.ABIDiff, error) {
	symbols, err := st.RunSymbols(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	prev, err := st.PreviousRun(ctx, run)
	if errors.Is(err, store.ErrNoRun) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := store.Diff(prev.Symbols, symbols)
	return &d, nil
}
