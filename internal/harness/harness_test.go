package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestRun_RepeatedLiterals(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/repeated_literals.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"a", "b"}, result.Texts)

	var syms []string
	for _, ev := range result.Trace {
		if ev.Op == OpSite {
			syms = append(syms, ev.Symbol)
		}
	}
	assert.Equal(t, []string{"s1", "s2", "s1"}, syms)
}

func TestRun_FailedExpectations(t *testing.T) {
	s := mustParse(t, `
name: wrong
description: every expectation is wrong
tables:
  - name: t
    sites: [a, a]
flow:
  - register: t
    expect: {inserted: 2}
  - intern: b
    as: hb
    expect: {text: c}
  - lookup: z
    expect: {found: true}
  - site: t
    index: 0
    as: ha
assertions:
  - type: same
    handles: [ha, hb]
  - type: len
    count: 5
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "inserted 1, want 2")
	assert.Contains(t, result.Errors[1], `text "b", want "c"`)
	assert.Contains(t, result.Errors[2], "found=false, want true")
	assert.Contains(t, result.Errors[3], "assertion failed: same")
	assert.Contains(t, result.Errors[4], "assertion failed: len")
}

func TestRun_Normalize(t *testing.T) {
	s := mustParse(t, `
name: folded
description: lower-case folding merges texts
normalize: lower
tables:
  - name: t
    sites: [Content-Type]
flow:
  - register: t
  - site: t
    as: site
  - intern: CONTENT-TYPE
    as: dyn
    expect: {text: content-type}
assertions:
  - type: same
    handles: [site, dyn]
  - type: len
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"content-type"}, result.Texts)
}

func TestRun_StrictTableBeforeRegister(t *testing.T) {
	s := mustParse(t, `
name: strict
description: reading a strict site before registration fails
tables:
  - name: t
    strict: true
    sites: [a]
flow:
  - site: t
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "SITE_UNINITIALIZED")
	assert.Empty(t, result.Trace)
}

func TestRun_IsolatedRegistries(t *testing.T) {
	s := mustParse(t, `
name: iso
description: each run starts empty
flow:
  - lookup: a
    expect: {found: false}
  - intern: a
`)
	for range 2 {
		result, err := Run(s)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}
}

func TestRun_RejectsInvalidScenario(t *testing.T) {
	_, err := Run(&Scenario{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestHarness_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := mustParse(t, `
name: logged
description: the harness logs each run
tables:
  - name: t
    sites: [a]
flow:
  - register: t
`)
	result, err := New(WithLogger(logger)).Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, buf.String(), "scenario finished")
	assert.Contains(t, buf.String(), "symbol table registered")
	assert.Contains(t, buf.String(), "registry=harness-logged")
}
