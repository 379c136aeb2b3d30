package symbol

import (
	"sort"
	"strings"
	"unsafe"
)

// store holds the interned strings. It is not synchronized; the Registry
// guards it.
//
// byText answers deduplication lookups, byAddr validates opaque handles. Both
// always hold the same set of references.
type store struct {
	byText map[string]*string
	byAddr map[uintptr]*string
}

func newStore(capacity int) *store {
	return &store{
		byText: make(map[string]*string, capacity),
		byAddr: make(map[uintptr]*string, capacity),
	}
}

func (s *store) get(text string) (*string, bool) {
	ref, ok := s.byText[text]
	return ref, ok
}

// getBytes looks b up without converting it to a string first.
func (s *store) getBytes(b []byte) (*string, bool) {
	ref, ok := s.byText[string(b)]
	return ref, ok
}

func (s *store) getAddr(addr uintptr) (*string, bool) {
	ref, ok := s.byAddr[addr]
	return ref, ok
}

// insert returns the canonical reference for text. When text is new, ref
// becomes canonical if non-nil; otherwise the text is cloned into fresh
// storage.
//
// byAddr is written before byText: readers discover entries by text, so a
// reader never finds a text whose address is not yet indexed.
func (s *store) insert(text string, ref *string) (canonical *string, inserted bool) {
	if existing, ok := s.byText[text]; ok {
		return existing, false
	}
	if ref == nil {
		c := strings.Clone(text)
		ref = &c
	}
	s.byAddr[uintptr(unsafe.Pointer(ref))] = ref
	s.byText[*ref] = ref
	return ref, true
}

func (s *store) len() int { return len(s.byText) }

// texts returns all interned texts in lexicographic order.
func (s *store) texts() []string {
	out := make([]string, 0, len(s.byText))
	for text := range s.byText {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}
