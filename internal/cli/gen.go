package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/symtab/internal/codegen"
	"github.com/roach88/symtab/internal/manifest"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Check bool
}

// GenResult lists the files generated or checked.
type GenResult struct {
	Files []string `json:"files"`
	Check bool     `json:"check"`
}

func (r GenResult) String() string {
	verb := "generated"
	if r.Check {
		verb = "up to date"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %d file(s) %s", len(r.Files), verb)
	for _, f := range r.Files {
		b.WriteString("\n  " + f)
	}
	return b.String()
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen [manifest...]",
		Short: "Generate symbol tables from manifests",
		Long: `Generate Go source declaring a registration table for each manifest.

Each manifest foo.yaml produces foo_symbols.go next to it, holding the table,
one site variable per symbol and an init function that registers the table.

Example:
  symtool gen ./httpsym/methods.yaml
  symtool gen --check 'internal/*/symbols.yaml'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if generated files are missing or stale instead of writing them")

	return cmd
}

func runGen(opts *GenOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger(cmd)

	paths, err := opts.manifestPaths(args)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid manifest pattern", err)
	}
	if len(paths) == 0 {
		return f.Fail(ExitCommandError, ErrCodeNoManifests, "no manifests found", nil)
	}

	genOpts := codegen.Options{StrictDefault: opts.config().StrictInit}
	result := GenResult{Check: opts.Check}
	for _, p := range paths {
		m, err := manifest.Load(p)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeInvalidManifest, "invalid manifest "+p, err)
		}

		if opts.Check {
			if err := codegen.Check(m, genOpts); err != nil {
				if errors.Is(err, codegen.ErrStale) {
					return f.Fail(ExitFailure, ErrCodeStale, "generated file out of date, run symtool gen", err)
				}
				return f.Fail(ExitCommandError, ErrCodeGeneric, "check failed", err)
			}
			result.Files = append(result.Files, codegen.OutputPath(m))
			continue
		}

		out, err := codegen.WriteFile(m, genOpts)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write generated file", err)
		}
		log.Debug("symbol table generated", "manifest", p, "output", out, "symbols", len(m.Symbols))
		result.Files = append(result.Files, out)
	}

	return f.Success(result)
}
