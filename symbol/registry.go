package symbol

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrGlobalConfigured is returned by ConfigureGlobal once the global registry
// exists.
var ErrGlobalConfigured = errors.New("symbol: global registry already initialized")

// Registry is a concurrent deduplication store mapping text to Symbols.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	st   *store
	id   string
	opts options
}

type options struct {
	normalize Normalizer
	logger    *slog.Logger
	ids       IDGenerator
	capacity  int
}

// Option configures a Registry.
type Option func(*options)

// WithNormalizer canonicalizes text before every lookup and insertion.
func WithNormalizer(n Normalizer) Option { return func(o *options) { o.normalize = n } }

// WithLogger sets the logger used for registration events.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithIDGenerator sets the source of the registry's diagnostic ID.
func WithIDGenerator(g IDGenerator) Option { return func(o *options) { o.ids = g } }

// WithCapacity pre-sizes the indexes.
func WithCapacity(n int) Option { return func(o *options) { o.capacity = n } }

// NewRegistry creates an empty registry. Most programs use Global instead;
// Symbols from different registries never compare equal.
func NewRegistry(opts ...Option) *Registry {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.ids == nil {
		o.ids = UUIDv7Generator{}
	}
	if o.capacity < 0 {
		o.capacity = 0
	}
	return &Registry{
		st:   newStore(o.capacity),
		id:   o.ids.Generate(),
		opts: o,
	}
}

var (
	globalMu  sync.Mutex
	globalReg atomic.Pointer[Registry]
)

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	if r := globalReg.Load(); r != nil {
		return r
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if r := globalReg.Load(); r != nil {
		return r
	}
	r := NewRegistry()
	globalReg.Store(r)
	return r
}

// ConfigureGlobal creates the global registry with opts. It must run before
// anything calls Global, including the init functions of packages that
// register tables, so in practice it belongs in an init function of a package
// imported ahead of them. It returns ErrGlobalConfigured when too late.
func ConfigureGlobal(opts ...Option) (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalReg.Load() != nil {
		return nil, ErrGlobalConfigured
	}
	r := NewRegistry(opts...)
	globalReg.Store(r)
	return r, nil
}

// ID returns the registry's diagnostic identifier.
func (r *Registry) ID() string { return r.id }

func (r *Registry) logger() *slog.Logger {
	if r.opts.logger != nil {
		return r.opts.logger
	}
	return slog.Default()
}

func (r *Registry) normalize(text string) string {
	if r.opts.normalize == nil {
		return text
	}
	return r.opts.normalize(text)
}

// Lookup returns the Symbol for text if it has been interned.
func (r *Registry) Lookup(text string) (Symbol, bool) {
	text = r.normalize(text)
	r.mu.RLock()
	ref, ok := r.st.get(text)
	r.mu.RUnlock()
	return Symbol{p: ref}, ok
}

// LookupBytes is like Lookup for a byte slice.
func (r *Registry) LookupBytes(b []byte) (Symbol, bool) {
	if r.opts.normalize != nil {
		return r.Lookup(string(b))
	}
	r.mu.RLock()
	ref, ok := r.st.getBytes(b)
	r.mu.RUnlock()
	return Symbol{p: ref}, ok
}

// LookupAddress returns the Symbol whose address is addr, if any.
func (r *Registry) LookupAddress(addr uint64) (Symbol, bool) {
	if uint64(uintptr(addr)) != addr {
		return Symbol{}, false
	}
	r.mu.RLock()
	ref, ok := r.st.getAddr(uintptr(addr))
	r.mu.RUnlock()
	return Symbol{p: ref}, ok
}

// FromOpaque validates an opaque handle produced by ToOpaque.
func (r *Registry) FromOpaque(v uint64) (Symbol, bool) {
	return r.LookupAddress(v)
}

// Intern returns the Symbol for text, inserting a copy of text if it is new.
//
// The read lock is tried first; the write lock is only taken for new text,
// and the text is looked up again under it so concurrent callers converge on
// whichever insertion committed first.
//
// Interned strings are never freed: interning untrusted or unbounded input is
// a memory-exhaustion hazard.
func (r *Registry) Intern(text string) Symbol {
	text = r.normalize(text)
	r.mu.RLock()
	ref, ok := r.st.get(text)
	r.mu.RUnlock()
	if ok {
		return Symbol{p: ref}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ref, _ = r.st.insert(text, nil)
	return Symbol{p: ref}
}

// InternBytes is like Intern for a byte slice. b is copied once, and only
// when new.
func (r *Registry) InternBytes(b []byte) Symbol {
	if r.opts.normalize != nil {
		return r.Intern(string(b))
	}
	r.mu.RLock()
	ref, ok := r.st.getBytes(b)
	r.mu.RUnlock()
	if ok {
		return Symbol{p: ref}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.st.getBytes(b); ok {
		return Symbol{p: ref}
	}
	owned := string(b)
	ref, _ = r.st.insert(owned, &owned)
	return Symbol{p: ref}
}

// InternStatic is like Intern but adopts ref as the canonical storage when the
// text is new, so nothing is allocated. The caller must never modify *ref
// afterwards. A nil ref yields the zero Symbol.
func (r *Registry) InternStatic(ref *string) Symbol {
	if ref == nil {
		return Symbol{}
	}
	if sym, ok := r.Lookup(*ref); ok {
		return sym
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.internStaticLocked(ref)
}

// internStaticLocked requires the write lock.
func (r *Registry) internStaticLocked(ref *string) Symbol {
	text := *ref
	if r.opts.normalize != nil {
		if n := r.opts.normalize(text); n != text {
			canonical, _ := r.st.insert(n, nil)
			return Symbol{p: canonical}
		}
	}
	canonical, _ := r.st.insert(text, ref)
	return Symbol{p: canonical}
}

// RegisterSites resolves every site under a single write lock. It is the bulk
// path behind Table.Register and is idempotent: sites that are already
// resolved re-resolve to the same Symbol and add nothing.
func (r *Registry) RegisterSites(sites []*Site) RegisterStats {
	w := r.Write()
	defer w.Unlock()
	return w.RegisterSites(sites)
}

// Len returns the number of interned strings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.len()
}

// Texts returns a sorted snapshot of all interned texts. It is meant for
// diagnostics and the catalog, not for hot paths.
func (r *Registry) Texts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.texts()
}

// RegisterStats summarizes a bulk registration.
type RegisterStats struct {
	Sites    int // sites resolved
	Inserted int // texts that were new to the registry
}
