package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Golden string // golden directory; empty skips golden comparison
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern on the file name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios against the generator.

Each scenario names a model and a backend, the expected symbol table or
generation error, fragment and file assertions, and wire round-trip
vectors. With --golden the symbol table snapshot of every scenario is
compared against {golden}/{name}.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  ffigen test ./scenarios
  ffigen test ./scenarios --filter "b_*"
  ffigen test ./scenarios --golden ./golden --update
  ffigen test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare snapshots against this golden directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	if opts.Update && opts.Golden == "" {
		return f.Fail(ExitCommandError, ErrCodeBadArgument,
			errors.WithHint(errors.New("--update needs a golden directory"), "pass --golden <dir>"), nil)
	}
	if _, err := os.Stat(scenariosDir); err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, errors.Wrap(err, "scenarios directory"), nil)
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, err, nil)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	if len(files) == 0 {
		if f.IsJSON() {
			return outputTestJSON(f, result)
		}
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	h := harness.New(opts.logger())
	for _, file := range files {
		sr := runScenario(ctx, h, file, opts, f)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.IsJSON() {
		return outputTestJSON(f, result)
	}
	return outputTestText(f, result)
}

// findScenarioFiles lists *.yaml files in dir whose base name, without
// extension, matches filter.
func findScenarioFiles(dir, filter string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	if filter == "" {
		slices.Sort(matches)
		return matches, nil
	}

	var files []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		ok, err := filepath.Match(filter, name)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter %q", filter)
		}
		if ok {
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func runScenario(ctx context.Context, h *harness.Harness, file string, opts *TestOptions, f *OutputFormatter) ScenarioResult {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	fail := func(errs ...string) ScenarioResult {
		if !f.IsJSON() {
			fmt.Fprintf(f.Writer, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail("Load error: " + err.Error())
	}
	name = scenario.Name

	result, err := h.Run(ctx, scenario)
	if err != nil {
		return fail("Run error: " + err.Error())
	}
	if !result.Pass {
		return fail(result.Errors...)
	}

	if opts.Golden != "" {
		if opts.Update {
			if err := harness.UpdateGolden(opts.Golden, result); err != nil {
				return fail("Golden error: " + err.Error())
			}
			if !f.IsJSON() {
				fmt.Fprintf(f.Writer, "✓ %s (golden updated)\n", name)
			}
			return ScenarioResult{Name: name, Pass: true}
		}
		match, err := harness.CompareGolden(opts.Golden, result)
		if err != nil {
			return fail("Golden error: " + err.Error())
		}
		if !match {
			return fail("Golden file mismatch (run with --update to regenerate)")
		}
	}

	if !f.IsJSON() {
		fmt.Fprintf(f.Writer, "✓ %s\n", name)
	}
	return ScenarioResult{Name: name, Pass: true}
}

func outputTestJSON(f *OutputFormatter, result TestResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    ErrCodeScenario,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	if err := f.encode(resp); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func outputTestText(f *OutputFormatter, result TestResult) error {
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}
