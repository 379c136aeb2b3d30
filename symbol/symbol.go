package symbol

import (
	"strconv"
	"strings"
	"unsafe"
)

// Symbol is an interned string.
//
// The zero Symbol is not interned; it reports IsZero and renders as "".
// Two Symbols are equal iff they reference the same registry-owned string,
// which the Registry guarantees for identical text.
type Symbol struct {
	p *string
}

// New returns the Symbol for text from the global registry, interning it on
// first use. The text is copied, so callers may pass substrings of large
// buffers without pinning them.
//
// Symbols are never freed: do not call New with unbounded or untrusted input.
func New(text string) Symbol {
	return Global().Intern(text)
}

// NewBytes is like New for a byte slice. It only allocates when b has not been
// interned before.
func NewBytes(b []byte) Symbol {
	return Global().InternBytes(b)
}

// NewStatic interns *ref in the global registry, adopting ref as the canonical
// storage when the text is new. The caller must never modify *ref afterwards.
func NewStatic(ref *string) Symbol {
	return Global().InternStatic(ref)
}

// Get returns the Symbol for text if it has already been interned in the
// global registry. It never allocates and never grows the registry.
func Get(text string) (Symbol, bool) {
	return Global().Lookup(text)
}

// FromOpaque validates v against the global registry and returns the Symbol it
// encodes. It reports false for values not produced by ToOpaque.
func FromOpaque(v uint64) (Symbol, bool) {
	return Global().FromOpaque(v)
}

// FromOpaqueUnchecked converts v back into a Symbol without validation.
//
// v must come from ToOpaque in the current process. Any other value yields a
// Symbol pointing at arbitrary memory.
func FromOpaqueUnchecked(v uint64) Symbol {
	if v == 0 {
		return Symbol{}
	}
	// checkptr (on under -race) rejects uintptr-to-Pointer conversions that
	// land in a heap allocation, so the bits are reinterpreted instead.
	u := uintptr(v)
	return Symbol{p: *(**string)(unsafe.Pointer(&u))}
}

// String returns the interned text. It takes no locks.
func (s Symbol) String() string {
	if s.p == nil {
		return ""
	}
	return *s.p
}

// GoString returns the quoted text.
func (s Symbol) GoString() string {
	return strconv.Quote(s.String())
}

// IsZero reports whether s is the zero Symbol.
func (s Symbol) IsZero() bool { return s.p == nil }

// Len returns the length of the text in bytes.
func (s Symbol) Len() int { return len(s.String()) }

// IsEmpty reports whether the text is empty. The zero Symbol is empty too.
func (s Symbol) IsEmpty() bool { return s.Len() == 0 }

// Addr returns the address identifying s.
func (s Symbol) Addr() uintptr {
	return uintptr(unsafe.Pointer(s.p))
}

// ToOpaque encodes s as an integer for crossing a foreign boundary.
// It is a pure projection: no locks, no allocation.
func (s Symbol) ToOpaque() uint64 {
	return uint64(s.Addr())
}

// EqualText compares the text of s with t.
func (s Symbol) EqualText(t string) bool {
	return s.String() == t
}

// LessText orders Symbols lexicographically by text, like CompareText. Use
// Compare for the cheaper address order.
func (s Symbol) LessText(o Symbol) bool {
	return CompareText(s, o) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler by interning text in the
// global registry.
func (s *Symbol) UnmarshalText(text []byte) error {
	*s = Global().InternBytes(text)
	return nil
}

// Compare orders Symbols by address. The order is consistent within a process
// but arbitrary, and changes between runs. CompareText and LessText order by
// text.
func Compare(a, b Symbol) int {
	switch x, y := a.Addr(), b.Addr(); {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// CompareText orders Symbols lexicographically by text.
func CompareText(a, b Symbol) int {
	if a == b {
		return 0
	}
	return strings.Compare(a.String(), b.String())
}
