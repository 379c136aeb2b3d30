package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/symtab/internal/testutil"
)

func TestSite_LazyResolution(t *testing.T) {
	if debugAssertions {
		t.Skip("lazy resolution panics in debug builds")
	}
	reg := newTestRegistry()
	tbl := NewTable("lazy", WithRegistry(reg))
	site := tbl.Site("lazy")

	sym := site.Symbol()

	assert.True(t, site.Resolved())
	testutil.AssertSame(t, reg.Intern("lazy"), sym)
	assert.False(t, tbl.Sealed(), "lazy reads do not seal the table")

	// Registration afterwards keeps the same Symbol
	tbl.Register()
	testutil.AssertSame(t, sym, site.Symbol())
}

func TestSite_ConcurrentLazyResolutionConverges(t *testing.T) {
	if debugAssertions {
		t.Skip("lazy resolution panics in debug builds")
	}
	reg := newTestRegistry()
	tbl := NewTable("race", WithRegistry(reg))
	site := tbl.Site("raced")

	const readers = 32
	results := make([]Symbol, readers)
	var g errgroup.Group
	for i := 0; i < readers; i++ {
		g.Go(func() error {
			results[i] = site.Symbol()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, s := range results {
		testutil.AssertSame(t, results[0], s)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestSite_ConcurrentReadsDuringRegister(t *testing.T) {
	if debugAssertions {
		t.Skip("lazy resolution panics in debug builds")
	}
	reg := newTestRegistry()
	tbl := NewTable("overlap", WithRegistry(reg))
	sites := []*Site{tbl.Site("one"), tbl.Site("two"), tbl.Site("one")}

	var g errgroup.Group
	g.Go(func() error {
		tbl.Register()
		return nil
	})
	for _, s := range sites {
		g.Go(func() error {
			s.Symbol()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	testutil.AssertSame(t, sites[0].Symbol(), sites[2].Symbol())
	assert.Equal(t, 2, reg.Len())
}

func TestSite_StrictTablePanicsBeforeRegister(t *testing.T) {
	reg := newTestRegistry()
	tbl := NewTable("strict", WithRegistry(reg), WithStrictInit())
	site := tbl.Site("early")

	v := recovered(func() { site.Symbol() })

	pe, ok := v.(*ProtocolError)
	require.True(t, ok, "expected *ProtocolError, got %T", v)
	assert.Equal(t, ErrCodeSiteUninitialized, pe.Code)
	assert.Equal(t, "strict", pe.Table)
	assert.Equal(t, "early", pe.Text)
	assert.True(t, IsProtocolError(pe))
	assert.Equal(t, 0, reg.Len(), "nothing interned")

	tbl.Register()
	assert.Equal(t, "early", site.Symbol().String())
}

func TestSite_Equal(t *testing.T) {
	reg := newTestRegistry()
	tbl := NewTable("eq", WithRegistry(reg))
	site := tbl.Site("eq")
	tbl.Register()

	assert.True(t, site.Equal(reg.Intern("eq")))
	assert.False(t, site.Equal(reg.Intern("ne")))
}

func TestSite_NormalizedRegistry(t *testing.T) {
	reg := newTestRegistry(WithNormalizer(FoldLower))
	tbl := NewTable("fold", WithRegistry(reg))
	upper := tbl.Site("GET")
	lower := tbl.Site("get")
	tbl.Register()

	testutil.AssertSame(t, upper.Symbol(), lower.Symbol())
	assert.Equal(t, "get", upper.String())
	assert.Equal(t, "GET", upper.Text())
}

func TestProtocolError_Message(t *testing.T) {
	err := &ProtocolError{Code: ErrCodeSiteUninitialized, Table: "t", Text: "x", Message: "boom"}

	assert.Equal(t, `SITE_UNINITIALIZED: boom (table=t, text="x")`, err.Error())
	assert.False(t, IsProtocolError(ErrTableSealed))
}
