// Package cli implements the ffigen command line.
package cli

import (
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpl/application-services/internal/config"
	"github.com/rpl/application-services/internal/logger"
)

// RootOptions holds global flags for all commands, plus the config and
// logger they resolve to.
type RootOptions struct {
	Verbose    int
	Format     string // "json" | "text"
	ConfigPath string
	LogJSON    bool

	Config *config.Config
	Logger *zap.SugaredLogger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ffigen CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ffigen",
		Short: "ffigen - FFI binding generator",
		Long: `Generate foreign-function bindings from an interface model.

A model describes one component's objects, records, namespaces and enums.
ffigen emits the raw FFI declarations and native wrappers for a backend
(kotlin, python or go), all sharing one {Scope}_{Member} symbol table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "verbose output (-vv for debug logs)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: "+config.FileName+" found from the working directory up)")
	cmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "write logs as JSON lines")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSymbolsCommand(opts))
	cmd.AddCommand(NewBackendsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewWireCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))

	return cmd
}

// setup validates global flags, builds the logger and loads the config.
// init skips the config so a broken file can be replaced.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, "invalid format "+o.Format+": must be one of text, json")
	}
	o.Logger = logger.New(logger.Options{
		Verbosity: o.Verbose,
		JSON:      o.LogJSON,
		Output:    cmd.ErrOrStderr(),
	})

	if cmd.Name() == "init" {
		return nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "working directory", err)
	}
	cfg, err := config.Load(o.ConfigPath, wd)
	if err != nil {
		f := o.formatter(cmd)
		return f.Fail(ExitCommandError, ErrCodeGeneric, errors.Wrap(err, "load config"), nil)
	}
	o.Config = cfg
	if cfg.File != "" {
		o.Logger.Debugw("config loaded", logger.FieldPath, cfg.File)
	}
	return nil
}

// config returns the loaded config, or defaults when commands run without
// the root command (tests).
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return logger.Nop()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose > 0,
	}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
