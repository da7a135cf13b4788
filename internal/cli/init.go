package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpl/application-services/internal/config"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Dir   string
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a starter " + config.FileName,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to write the config into")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	path := filepath.Join(opts.Dir, config.FileName)

	if err := config.WriteStarter(path, opts.Force); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err, nil)
	}
	if f.IsJSON() {
		return f.Success(map[string]string{"path": path})
	}
	fmt.Fprintf(f.Writer, "✓ Wrote %s\n", path)
	return nil
}
