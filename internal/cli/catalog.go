package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/symtab/internal/catalog"
	"github.com/roach88/symtab/internal/manifest"
)

// CatalogOptions holds flags shared by catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	Database string
}

// SnapshotList is the output of catalog list.
type SnapshotList struct {
	Snapshots []catalog.SnapshotInfo `json:"snapshots"`
}

func (l SnapshotList) String() string {
	if len(l.Snapshots) == 0 {
		return "no snapshots"
	}
	var b strings.Builder
	for i, s := range l.Snapshots {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d %s: %d text(s), %d new (registry %s)", s.ID, s.Label, s.Texts, s.NewTexts, s.RegistryID)
	}
	return b.String()
}

// CatalogStats is the output of catalog stats.
type CatalogStats struct {
	catalog.Stats
}

func (s CatalogStats) String() string {
	return fmt.Sprintf("snapshots: %d\ntexts:     %d\nbytes:     %d\ntables:    %d",
		s.Snapshots, s.Texts, s.Bytes, s.Tables)
}

// TextList is the output of catalog texts.
type TextList struct {
	Texts []string `json:"texts"`
}

func (l TextList) String() string { return strings.Join(l.Texts, "\n") }

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the SQLite text catalog",
		Long: `Inspect the catalog of interned texts written by symtool intern --db.

The catalog stores texts only; Symbol identities never leave a process.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "catalog path (default from config)")

	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogStatsCommand(opts))
	cmd.AddCommand(newCatalogTextsCommand(opts))
	cmd.AddCommand(newCatalogExportCommand(opts))

	return cmd
}

// withCatalog opens the catalog, runs fn and closes it.
func (o *CatalogOptions) withCatalog(cmd *cobra.Command, fn func(ctx context.Context, c *catalog.Catalog) error) error {
	f := o.formatter(cmd)
	path := o.Database
	if path == "" {
		path = o.config().Catalog
	}
	if path == "" {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "no catalog: pass --db or set catalog in the config file", nil)
	}
	c, err := catalog.Open(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to open catalog", err)
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fn(ctx, c); err != nil {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "catalog query failed", err)
	}
	return nil
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCatalog(cmd, func(ctx context.Context, c *catalog.Catalog) error {
				snaps, err := c.Snapshots(ctx)
				if err != nil {
					return err
				}
				return opts.formatter(cmd).Success(SnapshotList{Snapshots: snaps})
			})
		},
	}
}

func newCatalogStatsCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show catalog totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCatalog(cmd, func(ctx context.Context, c *catalog.Catalog) error {
				st, err := c.Stats(ctx)
				if err != nil {
					return err
				}
				return opts.formatter(cmd).Success(CatalogStats{st})
			})
		},
	}
}

func newCatalogTextsCommand(opts *CatalogOptions) *cobra.Command {
	var (
		snapshot int64
		table    string
	)
	cmd := &cobra.Command{
		Use:           "texts",
		Short:         "Print catalog texts",
		Long:          "Print all texts, the texts of one snapshot, or the sites of one table in declaration order.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCatalog(cmd, func(ctx context.Context, c *catalog.Catalog) error {
				var (
					texts []string
					err   error
				)
				if table != "" {
					texts, err = c.TableTexts(ctx, table)
				} else {
					texts, err = c.Texts(ctx, snapshot)
				}
				if err != nil {
					return err
				}
				return opts.formatter(cmd).Success(TextList{Texts: texts})
			})
		},
	}
	cmd.Flags().Int64Var(&snapshot, "snapshot", 0, "snapshot id (default all texts)")
	cmd.Flags().StringVar(&table, "table", "", "table name")
	return cmd
}

func newCatalogExportCommand(opts *CatalogOptions) *cobra.Command {
	var (
		pkg      string
		snapshot int64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write catalog texts as a symbol manifest",
		Long: `Write the catalog's texts as a symbol manifest on standard output,
ready for symtool gen. Site names are Sym0, Sym1, ... and are meant to be
renamed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCatalog(cmd, func(ctx context.Context, c *catalog.Catalog) error {
				texts, err := c.Texts(ctx, snapshot)
				if err != nil {
					return err
				}
				if len(texts) == 0 {
					return fmt.Errorf("no texts to export")
				}
				return manifest.FromTexts(pkg, texts).Encode(cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "symbols", "Go package of the manifest")
	cmd.Flags().Int64Var(&snapshot, "snapshot", 0, "snapshot id (default all texts)")
	return cmd
}
