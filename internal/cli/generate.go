package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/backend"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/logger"
	"github.com/rpl/application-services/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Backend string
	Output  string   // output file path, "-" for stdout
	Workers int      // 0 means the configured value
	Ledger  string   // ledger path; enables recording
	Options []string // key=value backend options
}

// GenerateResult summarizes one generate run.
type GenerateResult struct {
	Component   string         `json:"component"`
	Backend     string         `json:"backend"`
	Output      string         `json:"output"`
	Fingerprint string         `json:"fingerprint"`
	Symbols     int            `json:"symbols"`
	Fragments   int            `json:"fragments"`
	RunID       string         `json:"run_id,omitempty"`
	Diff        *store.ABIDiff `json:"abi_diff,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <model>",
		Short: "Generate bindings for a backend",
		Long: `Generate the bindings of an interface model for one backend.

The model is a .cue file or directory, or a .json/.yaml document. The output
is a single source file named after the component, written to the
configured out_dir unless -o is given.

With --ledger (or [ledger] enabled = true) the run is recorded in a SQLite
ledger and the symbol table is diffed against the previous run of the same
component and backend; removed or changed symbols are ABI breaks.

Examples:
  ffigen generate demo.yaml
  ffigen generate model/ --backend python -o bindings/demo.py
  ffigen generate demo.cue --backend go --option package=demoffi
  ffigen generate demo.yaml --ledger ffigen.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "backend name (default from config, else "+backend.Default+")")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "members generated concurrently (default from config)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "record the run in this ledger database")
	cmd.Flags().StringArrayVar(&opts.Options, "option", nil, "backend option key=value (repeatable)")

	return cmd
}

func runGenerate(ctx context.Context, opts *GenerateOptions, modelPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	cfg := opts.config()

	backendName := firstNonEmpty(opts.Backend, cfg.Generate.Backend, backend.Default)
	b, err := backend.Lookup(backendName)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUnknownBackend, err, nil)
	}

	backendOpts := cfg.BackendOptions(b.Name())
	for _, kv := range opts.Options {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return f.Fail(ExitCommandError, ErrCodeBadArgument,
				errors.WithHint(errors.Newf("invalid --option %q", kv), "use key=value, e.g. package=com.example"), nil)
		}
		backendOpts[k] = v
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Generate.Workers
	}

	c, err := loadModel(f, modelPath)
	if err != nil {
		return err
	}

	log := opts.logger().With(logger.FieldComponent, c.Name, logger.FieldBackend, b.Name())
	out, err := engine.GenerateFile(ctx, c, b,
		engine.WithWorkers(workers),
		engine.WithBackendOptions(backendOpts),
		engine.WithLogger(opts.logger()),
	)
	if err != nil {
		return f.Fail(ExitFailure, ErrorCode(err), err, generationDetails(err))
	}

	target := opts.Output
	if target == "" {
		target = filepath.Join(cfg.Generate.OutDir, out.FileName)
	}
	if target == "-" {
		if _, err := cmd.OutOrStdout().Write(out.Source); err != nil {
			return WrapExitError(ExitCommandError, "write stdout", err)
		}
	} else if err := writeOutput(target, out.Source); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err, nil)
	}
	log.Infow("wrote bindings", logger.FieldPath, target, logger.FieldFingerprint, out.Fingerprint)

	result := GenerateResult{
		Component:   out.Component,
		Backend:     out.Backend,
		Output:      target,
		Fingerprint: out.Fingerprint,
		Symbols:     len(out.Symbols.Signatures),
		Fragments:   len(out.Fragments),
	}

	ledgerPath := opts.Ledger
	if ledgerPath == "" && cfg.Ledger.Enabled {
		ledgerPath = cfg.Ledger.Path
	}
	if ledgerPath != "" {
		if err := recordRun(ctx, ledgerPath, out, target, &result); err != nil {
			return f.Fail(ExitCommandError, ErrCodeLedger, err, nil)
		}
		log.Infow("recorded run", logger.FieldRunID, result.RunID)
	}

	if target == "-" {
		// stdout carries the source; only breaks go to stderr.
		if result.Diff != nil && result.Diff.Breaking() {
			printDiff(f.GetErrWriter(), result.Diff)
		}
		return nil
	}
	if f.IsJSON() {
		return f.Success(result)
	}
	printGenerateResult(f.Writer, result)
	return nil
}

// recordRun stores out in the ledger and diffs it against the previous
// run of the same component and backend.
func recordRun(ctx context.Context, path string, out *engine.Output, target string, result *GenerateResult) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.RecordRun(ctx, out.Result, target)
	if err != nil {
		return err
	}
	result.RunID = run.ID

	prev, err := st.PreviousRun(ctx, run)
	if errors.Is(err, store.ErrNoRun) {
		return nil
	}
	if err != nil {
		return err
	}
	diff := store.Diff(prev.Symbols, run.Symbols)
	result.Diff = &diff
	return nil
}

func writeOutput(path string, src []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// generationDetails exposes the structured fields of a generation error.
func generationDetails(err error) any {
	var ge *engine.GenerationError
	if !errors.As(err, &ge) {
		return nil
	}
	details := map[string]any{}
	if ge.Member != "" {
		details["member"] = ge.Member
	}
	if ge.Path != "" {
		details["path"] = ge.Path
	}
	if ge.Type != "" {
		details["type"] = ge.Type
	}
	if len(ge.Conflicts) > 0 {
		details["conflicts"] = ge.Conflicts
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func printGenerateResult(w io.Writer, r GenerateResult) {
	fmt.Fprintf(w, "✓ Generated %s (%s) -> %s\n", r.Component, r.Backend, r.Output)
	fmt.Fprintf(w, "  %d symbol(s), %d fragment(s)\n", r.Symbols, r.Fragments)
	fmt.Fprintf(w, "  fingerprint: %s\n", r.Fingerprint)
	if r.RunID == "" {
		return
	}
	fmt.Fprintf(w, "  run: %s\n", r.RunID)
	if r.Diff == nil {
		fmt.Fprintln(w, "  first recorded run")
		return
	}
	printDiff(w, r.Diff)
}

func printDiff(w io.Writer, d *store.ABIDiff) {
	if d.Empty() {
		fmt.Fprintln(w, "  ABI unchanged since previous run")
		return
	}
	if d.Breaking() {
		fmt.Fprintln(w, "  ⚠ ABI break since previous run:")
	} else {
		fmt.Fprintln(w, "  ABI extended since previous run:")
	}
	for _, s := range d.Removed {
		fmt.Fprintf(w, "    - %s\n", s)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(w, "    ~ %s\n        was %s\n", c.After, c.Before)
	}
	for _, s := range d.Added {
		fmt.Fprintf(w, "    + %s\n", s)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
