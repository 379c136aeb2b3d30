package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/symtab/internal/manifest"
)

// ValidationError is one invalid manifest.
type ValidationError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Manifests int               `json:"manifests"`
	Symbols   int               `json:"symbols"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("✓ %d manifest(s) valid, %d symbol(s)", r.Manifests, r.Symbols)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %d of %d manifest(s) invalid", len(r.Errors), r.Manifests)
	for _, e := range r.Errors {
		b.WriteString("\n  ")
		if e.Line > 0 {
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "%s: %s", e.File, e.Message)
		}
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest...]",
		Short: "Validate symbol manifests",
		Long: `Validate symbol manifests against the manifest schema without
generating code. Arguments may be glob patterns; with no arguments the
manifests listed in the config file are validated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	paths, err := opts.manifestPaths(args)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid manifest pattern", err)
	}
	if len(paths) == 0 {
		return f.Fail(ExitCommandError, ErrCodeNoManifests, "no manifests found", nil)
	}

	result := ValidationResult{Manifests: len(paths)}
	for _, p := range paths {
		f.VerboseLog("Validating %s", p)
		m, err := manifest.Load(p)
		if err != nil {
			result.Errors = append(result.Errors, toValidationError(p, err))
			continue
		}
		result.Symbols += len(m.Symbols)
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		if f.Format == "json" {
			if err := f.Error(ErrCodeInvalidManifest, "manifest validation failed", result.Errors); err != nil {
				return err
			}
		} else if err := f.Success(result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("manifest validation failed [%s]", ErrCodeInvalidManifest))
	}
	return f.Success(result)
}

func toValidationError(path string, err error) ValidationError {
	var ce *manifest.CompileError
	if errors.As(err, &ce) {
		return ValidationError{File: path, Line: ce.Line, Column: ce.Column, Field: ce.Field, Message: ce.Message}
	}
	return ValidationError{File: path, Message: err.Error()}
}
