package linkage

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/symtab/symbol"
)

var (
	// ErrUnregistered indicates a unit table that has not been registered.
	ErrUnregistered = errors.New("linkage: table not registered")

	// ErrNotAttached indicates a Detach for a unit the host does not know.
	ErrNotAttached = errors.New("linkage: unit not attached")
)

// Attachment records the outcome of attaching one unit.
type Attachment struct {
	Unit     string
	Tables   int
	Sites    int
	Inserted int
}

// Host attaches units to a single registry.
type Host struct {
	reg    *symbol.Registry
	logger *slog.Logger

	mu    sync.Mutex
	units map[string]Attachment
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the host's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) { h.logger = l }
}

// NewHost creates a host for reg. A nil reg means symbol.Global().
func NewHost(reg *symbol.Registry, opts ...HostOption) *Host {
	if reg == nil {
		reg = symbol.Global()
	}
	h := &Host{
		reg:    reg,
		logger: slog.Default(),
		units:  make(map[string]Attachment),
	}
	for _, fn := range opts {
		fn(h)
	}
	return h
}

// Registry returns the host registry.
func (h *Host) Registry() *symbol.Registry { return h.reg }

// Attach binds every table of u to the host registry and registers it.
//
// Every table is checked before any is bound, so a unit with one disjoint
// table attaches nothing and leaves its other tables unbound. Attaching the
// same unit again re-runs the registration, which inserts nothing new.
func (h *Host) Attach(u Unit) (Attachment, error) {
	name := u.UnitName()
	tables := u.SymbolTables()

	for _, t := range tables {
		if bound := t.Bound(); bound != nil && bound != h.reg {
			return Attachment{}, h.disjoint(name, t, fmt.Errorf("%w: table %s is bound to registry %s",
				symbol.ErrDisjointRegistry, t.Name(), bound.ID()))
		}
	}
	for _, t := range tables {
		if err := t.Bind(h.reg); err != nil {
			return Attachment{}, h.disjoint(name, t, err)
		}
	}

	att := Attachment{Unit: name, Tables: len(tables)}
	for _, t := range tables {
		stats := t.Register()
		att.Sites += stats.Sites
		att.Inserted += stats.Inserted
	}

	h.mu.Lock()
	h.units[name] = att
	h.mu.Unlock()

	h.logger.Info("unit attached",
		"unit", name,
		"tables", att.Tables,
		"sites", att.Sites,
		"inserted", att.Inserted,
	)
	return att, nil
}

func (h *Host) disjoint(unit string, t *symbol.Table, err error) error {
	h.logger.Warn("unit uses a different symbol registry",
		"unit", unit,
		"table", t.Name(),
		"registry", h.reg.ID(),
		"error", err,
	)
	return fmt.Errorf("attach %s: %w", unit, err)
}

// Check reports whether every table of u is registered against the host
// registry, without binding or registering anything.
func (h *Host) Check(u Unit) error {
	for _, t := range u.SymbolTables() {
		bound := t.Bound()
		if bound != nil && bound != h.reg {
			return fmt.Errorf("%s: table %s: %w", u.UnitName(), t.Name(), symbol.ErrDisjointRegistry)
		}
		if bound == nil || !t.Sealed() {
			return fmt.Errorf("%s: table %s: %w", u.UnitName(), t.Name(), ErrUnregistered)
		}
	}
	return nil
}

// Detach forgets u. Its Symbols stay interned; interned text is never freed.
func (h *Host) Detach(name string) error {
	h.mu.Lock()
	_, ok := h.units[name]
	delete(h.units, name)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("detach %s: %w", name, ErrNotAttached)
	}
	h.logger.Info("unit detached", "unit", name)
	return nil
}

// Units returns the current attachments sorted by unit name.
func (h *Host) Units() []Attachment {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Attachment, 0, len(h.units))
	for _, a := range h.units {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit < out[j].Unit })
	return out
}
