package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/symtab/internal/config"
	"github.com/roach88/symtab/symbol"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is resolved before any subcommand runs. Nil means defaults.
	Config *config.Config

	// Logger is built from --verbose and the config log level. Nil means a
	// logger that writes to the command's stderr.
	Logger *slog.Logger

	// IDGenerator overrides registry IDs (for testing).
	// If nil, defaults to symbol.UUIDv7Generator.
	IDGenerator symbol.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for symtool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "symtool",
		Short: "symtool - symbol table tooling",
		Long: `Tooling for process-wide string interning.

Generates registration tables from symbol manifests, validates manifests,
interns text corpora and keeps a SQLite catalog of known texts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, path, err := config.Resolve(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load config [%s]", ErrCodeConfig), err)
			}
			opts.Config = cfg
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose, cfg)
			opts.Logger.Debug("config resolved", "path", path, "normalize", cfg.Normalize)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $"+config.EnvConfig+" or ./"+config.DefaultFile+")")

	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInternCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger configures a text handler on w. --verbose forces Debug.
func newLogger(w io.Writer, verbose bool, cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if o.Logger == nil {
		o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose, o.config())
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newRegistry builds a registry from the configuration.
func (o *RootOptions) newRegistry(cmd *cobra.Command) *symbol.Registry {
	opts := o.config().RegistryOptions(o.logger(cmd))
	if o.IDGenerator != nil {
		opts = append(opts, symbol.WithIDGenerator(o.IDGenerator))
	}
	return symbol.NewRegistry(opts...)
}
