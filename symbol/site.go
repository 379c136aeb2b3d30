package symbol

import "sync/atomic"

// Site is the slot for one literal use site. Sites are created by Table.Site,
// normally as package-level variables, and live for the rest of the process.
//
// Until resolution slot points at the site's own literal; afterwards it holds
// the interned Symbol's reference and resolved is set. The transition happens
// once, from Table.Register, or lazily from Symbol if the table was not
// registered yet.
type Site struct {
	lit      string
	slot     atomic.Pointer[string]
	resolved atomic.Bool
	table    *Table
}

func newSite(t *Table, lit string) *Site {
	s := &Site{lit: lit, table: t}
	s.slot.Store(&s.lit)
	return s
}

// Symbol returns the interned Symbol for the site's literal.
func (s *Site) Symbol() Symbol {
	if s.resolved.Load() {
		return Symbol{p: s.slot.Load()}
	}
	return s.resolveLazy()
}

// resolveLazy interns the literal on first read when the table has not been
// registered. Concurrent callers may all intern; InternStatic makes them
// converge, so the last store wins harmlessly.
func (s *Site) resolveLazy() Symbol {
	if debugAssertions || s.table.strict {
		panic(newUninitializedError(s))
	}
	sym := s.table.registry().InternStatic(s.slot.Load())
	s.slot.Store(sym.p)
	s.resolved.Store(true)
	return sym
}

// resolve is the eager transition, run with the registry's write lock held.
func (s *Site) resolve(sym Symbol) {
	s.slot.Store(sym.p)
	s.resolved.Store(true)
}

// Resolved reports whether the site has been resolved.
func (s *Site) Resolved() bool { return s.resolved.Load() }

// Text returns the literal as declared.
func (s *Site) Text() string { return s.lit }

// Table returns the table the site belongs to.
func (s *Site) Table() *Table { return s.table }

// String returns the interned text.
func (s *Site) String() string { return s.Symbol().String() }

// Equal reports whether the site resolves to sym.
func (s *Site) Equal(sym Symbol) bool { return s.Symbol() == sym }
