package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/backend"
	"github.com/rpl/application-services/internal/engine"
)

// BackendInfo describes one registered backend.
type BackendInfo struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Example   string `json:"example_file"`
	Default   bool   `json:"default"`
}

// NewBackendsCommand creates the backends command.
func NewBackendsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "backends",
		Short:         "List the available backends",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackends(rootOpts, cmd)
		},
	}
}

func runBackends(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	def := opts.config().Generate.Backend

	var infos []BackendInfo
	for _, name := range backend.Names() {
		b, err := backend.Lookup(name)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeUnknownBackend, err, nil)
		}
		infos = append(infos, BackendInfo{
			Name:      b.Name(),
			Extension: b.FileExtension(),
			Example:   engine.FileName("demo", b),
			Default:   b.Name() == def,
		})
	}

	if f.IsJSON() {
		return f.Success(infos)
	}
	for _, info := range infos {
		marker := " "
		if info.Default {
			marker = "*"
		}
		fmt.Fprintf(f.Writer, "%s %-8s .%-4s e.g. %s\n", marker, info.Name, info.Extension, info.Example)
	}
	return nil
}
