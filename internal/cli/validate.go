package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/backend"
	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Backend string // optional: also dry-run generation for this backend
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	Component   string `json:"component"`
	Members     int    `json:"members"`
	Symbols     int    `json:"symbols"`
	Fingerprint string `json:"fingerprint"`
	Backend     string `json:"backend,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate a model without writing bindings",
		Long: `Validate an interface model without writing output files.

Runs the model rules (duplicate names, discriminant range, unresolved
references, map keys, record cycles) and the global symbol pass. With
--backend the model is also generated in memory, which catches types the
backend cannot express.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "also generate in memory for this backend")

	return cmd
}

func runValidate(ctx context.Context, opts *ValidateOptions, modelPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	c, err := loadModel(f, modelPath)
	if err != nil {
		return err
	}

	table, err := engine.BuildSymbolTable(c)
	if err != nil {
		return f.Fail(ExitFailure, ErrorCode(err), err, generationDetails(err))
	}
	fingerprint, err := model.Fingerprint(c)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, err, nil)
	}

	result := ValidationResult{
		Valid:       true,
		Component:   c.Name,
		Members:     len(c.Members),
		Symbols:     len(table.Signatures),
		Fingerprint: fingerprint,
	}

	if opts.Backend != "" {
		b, err := backend.Lookup(opts.Backend)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeUnknownBackend, err, nil)
		}
		f.VerboseLog("Generating %s in memory for %s", c.Name, b.Name())
		if _, err := engine.Run(ctx, c, b, engine.WithLogger(opts.logger())); err != nil {
			return f.Fail(ExitFailure, ErrorCode(err), err, generationDetails(err))
		}
		result.Backend = b.Name()
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ Model valid: %s (%d member(s), %d symbol(s))\n", result.Component, result.Members, result.Symbols)
	if result.Backend != "" {
		fmt.Fprintf(f.Writer, "✓ Generates for %s\n", result.Backend)
	}
	return nil
}
