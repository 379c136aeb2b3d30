package symbol

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Table is the registration table of one package: every Site the package
// declares, registered together from the package's init function.
//
// Sites are appended while package-level variables initialize. Register seals
// the table; declaring a Site afterwards panics, since run-time strings belong
// in New.
type Table struct {
	name   string
	strict bool

	mu     sync.Mutex
	sites  []*Site
	sealed atomic.Bool
	reg    atomic.Pointer[Registry]
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithRegistry binds the table to r instead of the global registry.
func WithRegistry(r *Registry) TableOption {
	return func(t *Table) { t.reg.Store(r) }
}

// WithStrictInit makes reading a Site before Register a fatal
// *ProtocolError instead of falling back to lazy resolution.
func WithStrictInit() TableOption {
	return func(t *Table) { t.strict = true }
}

// NewTable creates an empty table. name identifies the table in logs and
// diagnostics, conventionally the package import path.
func NewTable(name string, opts ...TableOption) *Table {
	t := &Table{name: name}
	for _, fn := range opts {
		fn(t)
	}
	return t
}

// Site declares a literal use site and adds it to the table.
func (t *Table) Site(lit string) *Site {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed.Load() {
		panic(fmt.Errorf("%w: %s: cannot declare site %q, use symbol.New for run-time strings", ErrTableSealed, t.name, lit))
	}
	s := newSite(t, lit)
	t.sites = append(t.sites, s)
	return s
}

// Register resolves every site of the table through its registry under a
// single write lock and seals the table. Call it from the package's init
// function, before any goroutine can read the sites.
//
// Registering twice is harmless: the second pass finds every text already
// interned and inserts nothing.
func (t *Table) Register() RegisterStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	reg := t.registry()
	again := t.sealed.Swap(true)
	stats := reg.RegisterSites(t.sites)
	reg.logger().Debug("symbol table registered",
		"table", t.name,
		"sites", stats.Sites,
		"inserted", stats.Inserted,
		"registry", reg.ID(),
		"repeat", again,
	)
	return stats
}

// Bind attaches the table to r. A table binds to one registry for life:
// binding again to the same registry is a no-op, and binding to another one
// fails with ErrDisjointRegistry. Tables that are read or registered without
// an explicit binding bind to Global.
func (t *Table) Bind(r *Registry) error {
	if t.reg.CompareAndSwap(nil, r) {
		return nil
	}
	if bound := t.reg.Load(); bound != r {
		return fmt.Errorf("%w: table %s is bound to registry %s, not %s", ErrDisjointRegistry, t.name, bound.ID(), r.ID())
	}
	return nil
}

// registry returns the bound registry, binding to Global on first use.
func (t *Table) registry() *Registry {
	if r := t.reg.Load(); r != nil {
		return r
	}
	t.reg.CompareAndSwap(nil, Global())
	return t.reg.Load()
}

// Registry returns the registry the table is bound to, binding it to Global
// if it is not bound yet.
func (t *Table) Registry() *Registry { return t.registry() }

// Bound returns the registry the table is bound to, or nil if it has not been
// bound yet. Unlike Registry it never binds.
func (t *Table) Bound() *Registry { return t.reg.Load() }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Sealed reports whether Register has run.
func (t *Table) Sealed() bool { return t.sealed.Load() }

// Strict reports whether the table was created with WithStrictInit.
func (t *Table) Strict() bool { return t.strict }

// Len returns the number of sites.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sites)
}

// Sites returns a copy of the table's sites in declaration order.
func (t *Table) Sites() []*Site {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Site(nil), t.sites...)
}
