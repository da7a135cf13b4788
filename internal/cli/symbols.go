package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/engine"
)

// NewSymbolsCommand creates the symbols command.
func NewSymbolsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols <model>",
		Short: "Print the FFI symbol table of a model",
		Long: `Print every FFI symbol the model produces, in emission order.

Symbols are named {Scope}_{Member} and are identical for every backend.
Each line shows the backend-neutral signature, including the handle
parameter of methods and the trailing error slot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSymbols(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSymbols(opts *RootOptions, modelPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	c, err := loadModel(f, modelPath)
	if err != nil {
		return err
	}
	table, err := engine.BuildSymbolTable(c)
	if err != nil {
		return f.Fail(ExitFailure, ErrorCode(err), err, generationDetails(err))
	}

	if f.IsJSON() {
		return f.Success(table)
	}
	for _, sig := range table.Signatures {
		suffix := ""
		if sig.Throws {
			suffix = "  [throws]"
		}
		fmt.Fprintf(f.Writer, "%s%s\n", sig, suffix)
	}
	f.VerboseLog("%d symbol(s) in %s", len(table.Signatures), table.Component)
	return nil
}
