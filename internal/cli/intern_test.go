package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symtab/internal/testutil"
)

func runInternCommand(t *testing.T, opts *InternOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newInternCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestIntern_CountsLines(t *testing.T) {
	a := testutil.WriteLines(t, "a.txt", []string{"GET", "POST", "GET"})
	b := testutil.WriteFile(t, "b.txt", "POST\nPUT\n\n")

	buf, err := runInternCommand(t, &InternOptions{RootOptions: testRootOptions("json")}, a, b)
	require.NoError(t, err)

	var result InternResult
	decodeResponse(t, buf, &result)
	assert.Equal(t, InternResult{Files: 2, Lines: 5, Interned: 3, Registry: "cli-test"}, result)
}

func TestIntern_Stdin(t *testing.T) {
	opts := &InternOptions{
		RootOptions: testRootOptions("text"),
		Stdin:       strings.NewReader("x\ny\nx\n"),
	}

	buf, err := runInternCommand(t, opts, "-")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 line(s) from 1 file(s), 2 distinct text(s)")
}

func TestIntern_StdinTwiceRejected(t *testing.T) {
	opts := &InternOptions{
		RootOptions: testRootOptions("text"),
		Stdin:       strings.NewReader("x\ny\n"),
	}

	buf, err := runInternCommand(t, opts, "-", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "can be read only once")
	assert.NotContains(t, buf.String(), "line(s)")
}

func TestIntern_LargeCorpusConcurrent(t *testing.T) {
	words := testutil.Corpus(500)
	var files []string
	for i := 0; i < 8; i++ {
		files = append(files, testutil.WriteLines(t, "words.txt", testutil.WithDuplicates(words)))
	}

	buf, err := runInternCommand(t, &InternOptions{RootOptions: testRootOptions("json")}, append([]string{"-j", "3"}, files...)...)
	require.NoError(t, err)

	var result InternResult
	decodeResponse(t, buf, &result)
	assert.Equal(t, int64(8*1000), result.Lines)
	assert.Equal(t, 500, result.Interned)
}

func TestIntern_SnapshotAndWarm(t *testing.T) {
	db := filepath.Join(t.TempDir(), "symbols.db")
	first := testutil.WriteLines(t, "first.txt", []string{"alpha", "beta"})
	second := testutil.WriteLines(t, "second.txt", []string{"gamma"})

	buf, err := runInternCommand(t, &InternOptions{RootOptions: testRootOptions("json")}, "--db", db, "--label", "one", first)
	require.NoError(t, err)
	var result InternResult
	decodeResponse(t, buf, &result)
	assert.Equal(t, int64(1), result.SnapshotID)

	buf, err = runInternCommand(t, &InternOptions{RootOptions: testRootOptions("json")}, "--db", db, "--warm", second)
	require.NoError(t, err)
	result = InternResult{}
	decodeResponse(t, buf, &result)
	assert.Equal(t, 2, result.Warmed)
	assert.Equal(t, 3, result.Interned)
	assert.Equal(t, int64(2), result.SnapshotID)
}

func TestIntern_WarmRequiresCatalog(t *testing.T) {
	path := testutil.WriteLines(t, "a.txt", []string{"a"})

	_, err := runInternCommand(t, &InternOptions{RootOptions: testRootOptions("text")}, "--warm", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCatalog)
}

func TestIntern_MissingFile(t *testing.T) {
	_, err := runInternCommand(t, &InternOptions{RootOptions: testRootOptions("text")}, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestIntern_NormalizedRegistry(t *testing.T) {
	path := testutil.WriteLines(t, "a.txt", []string{"GET", "get", "Get"})
	opts := testRootOptions("json")
	opts.Config = configWith(t, "normalize: lower\n")

	buf, err := runInternCommand(t, &InternOptions{RootOptions: opts}, path)
	require.NoError(t, err)

	var result InternResult
	decodeResponse(t, buf, &result)
	assert.Equal(t, 1, result.Interned)
}
