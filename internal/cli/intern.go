package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/symtab/internal/catalog"
	"github.com/roach88/symtab/symbol"
)

// maxLine bounds a single input line.
const maxLine = 1 << 20

// InternOptions holds flags for the intern command.
type InternOptions struct {
	*RootOptions
	Database string
	Label    string
	Warm     bool
	Jobs     int

	// Stdin replaces os.Stdin for the "-" argument (for testing).
	Stdin io.Reader
}

// InternResult summarizes an intern run.
type InternResult struct {
	Files      int    `json:"files"`
	Lines      int64  `json:"lines"`
	Interned   int    `json:"interned"`
	Warmed     int    `json:"warmed,omitempty"`
	SnapshotID int64  `json:"snapshot_id,omitempty"`
	Registry   string `json:"registry"`
}

func (r InternResult) String() string {
	s := fmt.Sprintf("✓ %d line(s) from %d file(s), %d distinct text(s)", r.Lines, r.Files, r.Interned)
	if r.Warmed > 0 {
		s += fmt.Sprintf(", %d warmed from catalog", r.Warmed)
	}
	if r.SnapshotID > 0 {
		s += fmt.Sprintf(", snapshot #%d", r.SnapshotID)
	}
	return s
}

// NewInternCommand creates the intern command.
func NewInternCommand(rootOpts *RootOptions) *cobra.Command {
	return newInternCommand(&InternOptions{RootOptions: rootOpts})
}

func newInternCommand(opts *InternOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intern <file>...",
		Short: "Intern the lines of text files",
		Long: `Intern every non-empty line of the given files into a fresh registry,
reading files concurrently. "-" reads standard input.

With --db the resulting texts are recorded as a catalog snapshot; with --warm
the registry is first pre-loaded from the catalog.

Example:
  symtool intern words.txt more.txt
  symtool intern --db symbols.db --label nightly corpus/*.txt`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntern(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "catalog to snapshot into (default from config)")
	cmd.Flags().StringVar(&opts.Label, "label", "intern", "snapshot label")
	cmd.Flags().BoolVar(&opts.Warm, "warm", false, "pre-intern catalog texts before reading input")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "files read concurrently")

	return cmd
}

func runIntern(opts *InternOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger(cmd)

	stdinArgs := 0
	for _, name := range files {
		if name == "-" {
			stdinArgs++
		}
	}
	if stdinArgs > 1 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, `standard input ("-") can be read only once`, nil)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Catalog
	}
	if opts.Warm && dbPath == "" {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "--warm requires a catalog (--db or config catalog)", nil)
	}

	reg := opts.newRegistry(cmd)
	result := InternResult{Files: len(files), Registry: reg.ID()}

	var cat *catalog.Catalog
	if dbPath != "" {
		var err error
		cat, err = catalog.Open(dbPath)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to open catalog", err)
		}
		defer cat.Close()
	}

	if opts.Warm {
		n, err := cat.Warm(ctx, reg)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to warm registry", err)
		}
		result.Warmed = n
		log.Debug("registry warmed", "texts", n, "catalog", dbPath)
	}

	lines, err := internFiles(ctx, reg, files, opts.Jobs, opts.stdin())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "failed to read input", err)
	}
	result.Lines = lines
	result.Interned = reg.Len()

	if cat != nil {
		info, err := cat.Snapshot(ctx, reg, opts.Label)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to write snapshot", err)
		}
		result.SnapshotID = info.ID
		log.Info("snapshot recorded", "id", info.ID, "texts", info.Texts, "new", info.NewTexts)
	}

	return f.Success(result)
}

func (o *InternOptions) stdin() io.Reader {
	if o.Stdin != nil {
		return o.Stdin
	}
	return os.Stdin
}

// internFiles interns every non-empty line of files into reg, reading up to
// jobs files at once, and returns the number of lines read.
func internFiles(ctx context.Context, reg *symbol.Registry, files []string, jobs int, stdin io.Reader) (int64, error) {
	var lines atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, name := range files {
		g.Go(func() error {
			if name == "-" {
				n, err := internLines(ctx, reg, stdin)
				lines.Add(n)
				if err != nil {
					return fmt.Errorf("stdin: %w", err)
				}
				return nil
			}
			fh, err := os.Open(name)
			if err != nil {
				return err
			}
			defer fh.Close()
			n, err := internLines(ctx, reg, fh)
			lines.Add(n)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return lines.Load(), err
}

func internLines(ctx context.Context, reg *symbol.Registry, r io.Reader) (int64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var n int64
	for sc.Scan() {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if b := sc.Bytes(); len(b) > 0 {
			reg.InternBytes(b)
			n++
		}
	}
	return n, sc.Err()
}
