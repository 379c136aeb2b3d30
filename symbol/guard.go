package symbol

// ReadGuard holds a registry's read lock. New Symbols cannot be created while
// it is held, but String on existing Symbols never needs the lock.
//
// A guard belongs to one goroutine. Call Unlock exactly when done; extra calls
// are no-ops.
type ReadGuard struct {
	r    *Registry
	done bool
}

// Read acquires the read lock for a batch of lookups.
func (r *Registry) Read() *ReadGuard {
	r.mu.RLock()
	return &ReadGuard{r: r}
}

// Unlock releases the read lock.
func (g *ReadGuard) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.r.mu.RUnlock()
}

// Len returns the number of interned strings.
func (g *ReadGuard) Len() int { return g.r.st.len() }

// Lookup returns the Symbol for text if it has been interned.
func (g *ReadGuard) Lookup(text string) (Symbol, bool) {
	ref, ok := g.r.st.get(g.r.normalize(text))
	return Symbol{p: ref}, ok
}

// LookupAddress returns the Symbol whose address is addr, if any.
func (g *ReadGuard) LookupAddress(addr uint64) (Symbol, bool) {
	if uint64(uintptr(addr)) != addr {
		return Symbol{}, false
	}
	ref, ok := g.r.st.getAddr(uintptr(addr))
	return Symbol{p: ref}, ok
}

// WriteGuard holds a registry's write lock for batch insertion, so inserting
// many strings pays for one lock acquisition.
type WriteGuard struct {
	r    *Registry
	done bool
}

// Write acquires the write lock.
func (r *Registry) Write() *WriteGuard {
	r.mu.Lock()
	return &WriteGuard{r: r}
}

// Unlock releases the write lock.
func (g *WriteGuard) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.r.mu.Unlock()
}

// Len returns the number of interned strings.
func (g *WriteGuard) Len() int { return g.r.st.len() }

// Lookup returns the Symbol for text if it has been interned.
func (g *WriteGuard) Lookup(text string) (Symbol, bool) {
	ref, ok := g.r.st.get(g.r.normalize(text))
	return Symbol{p: ref}, ok
}

// LookupAddress returns the Symbol whose address is addr, if any.
func (g *WriteGuard) LookupAddress(addr uint64) (Symbol, bool) {
	if uint64(uintptr(addr)) != addr {
		return Symbol{}, false
	}
	ref, ok := g.r.st.getAddr(uintptr(addr))
	return Symbol{p: ref}, ok
}

// Intern returns the Symbol for text, inserting a copy if new.
func (g *WriteGuard) Intern(text string) Symbol {
	ref, _ := g.r.st.insert(g.r.normalize(text), nil)
	return Symbol{p: ref}
}

// InternStatic returns the Symbol for *ref, adopting ref as storage if new.
func (g *WriteGuard) InternStatic(ref *string) Symbol {
	if ref == nil {
		return Symbol{}
	}
	return g.r.internStaticLocked(ref)
}

// RegisterSites resolves sites in order and marks each one resolved.
func (g *WriteGuard) RegisterSites(sites []*Site) RegisterStats {
	var stats RegisterStats
	for _, site := range sites {
		before := g.r.st.len()
		sym := g.r.internStaticLocked(site.slot.Load())
		site.resolve(sym)
		stats.Sites++
		if g.r.st.len() > before {
			stats.Inserted++
		}
	}
	return stats
}

// View runs fn with the read lock held. The lock is released even if fn
// panics.
func (r *Registry) View(fn func(g *ReadGuard)) {
	g := r.Read()
	defer g.Unlock()
	fn(g)
}

// Update runs fn with the write lock held. The lock is released even if fn
// panics; entries inserted before the panic stay consistent.
func (r *Registry) Update(fn func(g *WriteGuard)) {
	g := r.Write()
	defer g.Unlock()
	fn(g)
}
