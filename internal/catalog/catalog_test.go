package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symtab/internal/testutil"
	"github.com/roach88/symtab/symbol"
)

// createTestCatalog creates a catalog in a temp dir, closed on cleanup.
func createTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func newRegistry(id string) *symbol.Registry {
	return symbol.NewRegistry(symbol.WithIDGenerator(testutil.NewFixedIDGenerator(id)))
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	for i := 0; i < 3; i++ {
		c, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, c.Close())
	}
}

func TestOpen_Settings(t *testing.T) {
	c := createTestCatalog(t)

	for _, s := range settings {
		got, err := c.pragma(s.pragma)
		require.NoError(t, err)
		assert.Equal(t, s.want, got, s.pragma)
	}
	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestOpen_MigratesFromVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.db.Exec("DROP INDEX idx_table_sites_text")
	require.NoError(t, err)
	_, err = c.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	var n int
	require.NoError(t, c.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_table_sites_text'").Scan(&n))
	assert.Equal(t, 1, n)
	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99 is newer")
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Catalog{}).Close())
}

func TestSnapshot_RecordsTexts(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)
	reg := newRegistry("reg-a")
	for _, w := range []string{"b", "a", "c", "a"} {
		reg.Intern(w)
	}

	info, err := c.Snapshot(ctx, reg, "first")
	require.NoError(t, err)

	want := SnapshotInfo{ID: info.ID, Label: "first", RegistryID: "reg-a", Texts: 3, NewTexts: 3}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	texts, err := c.Texts(ctx, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a", "b", "c"}, texts); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_KeepsFirstSnapshot(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)
	reg := newRegistry("reg")
	reg.Intern("old")

	first, err := c.Snapshot(ctx, reg, "one")
	require.NoError(t, err)
	reg.Intern("new")
	second, err := c.Snapshot(ctx, reg, "two")
	require.NoError(t, err)

	assert.Equal(t, 1, second.NewTexts)

	snaps, err := c.Snapshots(ctx)
	require.NoError(t, err)
	want := []SnapshotInfo{
		{ID: first.ID, Label: "one", RegistryID: "reg", Texts: 1, NewTexts: 1},
		{ID: second.ID, Label: "two", RegistryID: "reg", Texts: 2, NewTexts: 1},
	}
	if diff := cmp.Diff(want, snaps); diff != "" {
		t.Errorf("Snapshots() mismatch (-want +got):\n%s", diff)
	}

	firstTexts, err := c.Texts(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, firstTexts)
}

func TestSnapshot_TableSites(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)
	reg := newRegistry("reg")
	tbl := symbol.NewTable("example/methods", symbol.WithRegistry(reg))
	tbl.Site("GET")
	tbl.Site("POST")
	tbl.Site("GET")
	tbl.Register()

	_, err := c.Snapshot(ctx, reg, "tables", tbl)
	require.NoError(t, err)

	got, err := c.TableTexts(ctx, "example/methods")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"GET", "POST", "GET"}, got); diff != "" {
		t.Errorf("TableTexts() mismatch (-want +got):\n%s", diff)
	}

	tables, err := c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"example/methods"}, tables)

	// A later snapshot replaces the table's sites
	tbl2 := symbol.NewTable("example/methods", symbol.WithRegistry(reg))
	tbl2.Site("PUT")
	_, err = c.Snapshot(ctx, reg, "again", tbl2)
	require.NoError(t, err)

	got, err = c.TableTexts(ctx, "example/methods")
	require.NoError(t, err)
	assert.Equal(t, []string{"PUT"}, got)
}

func TestSnapshot_NormalizedSites(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)
	reg := symbol.NewRegistry(
		symbol.WithIDGenerator(testutil.NewFixedIDGenerator("")),
		symbol.WithNormalizer(symbol.FoldLower),
	)
	tbl := symbol.NewTable("fold", symbol.WithRegistry(reg))
	tbl.Site("GET")
	tbl.Register()

	_, err := c.Snapshot(ctx, reg, "fold", tbl)
	require.NoError(t, err)

	got, err := c.TableTexts(ctx, "fold")
	require.NoError(t, err)
	assert.Equal(t, []string{"get"}, got)
}

func TestWarm_InternsCatalogTexts(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)
	src := newRegistry("src")
	for _, w := range testutil.Corpus(50) {
		src.Intern(w)
	}
	_, err := c.Snapshot(ctx, src, "corpus")
	require.NoError(t, err)

	dst := newRegistry("dst")
	dst.Intern("w0000")

	n, err := c.Warm(ctx, dst)
	require.NoError(t, err)

	assert.Equal(t, 49, n)
	assert.Equal(t, src.Texts(), dst.Texts())

	n, err = c.Warm(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)

	empty, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, empty)

	reg := newRegistry("reg")
	reg.Intern("ab")
	reg.Intern("cde")
	tbl := symbol.NewTable("t", symbol.WithRegistry(reg))
	tbl.Site("ab")
	tbl.Register()
	_, err = c.Snapshot(ctx, reg, "s", tbl)
	require.NoError(t, err)

	got, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Snapshots: 1, Texts: 2, Bytes: 5, Tables: 1}, got)
}

func TestReads_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	c := createTestCatalog(t)

	snaps, err := c.Snapshots(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snaps)
	assert.Empty(t, snaps)

	texts, err := c.TableTexts(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, texts)
}
