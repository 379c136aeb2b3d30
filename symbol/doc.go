// Package symbol provides process-wide string interning.
//
// A Symbol is a pointer-sized handle for an interned string. All occurrences of
// the same text resolve to a bit-identical Symbol, so Symbols compare with ==
// and hash as map keys without looking at the text.
//
// # Registry
//
// The Registry owns the interned text for the lifetime of the process. It keeps
// two indexes (by text for deduplication, by address for validating opaque
// handles) behind a single sync.RWMutex. Global returns the process singleton;
// NewRegistry builds isolated registries for tests and isolated plugins.
//
// # Literal sites
//
// Literals known at compile time are declared as package-level Sites of a
// per-package Table and resolved once from the package's init function:
//
//	var symbols = symbol.NewTable("example.com/httpsym")
//
//	var (
//	    GET  = symbols.Site("GET")
//	    POST = symbols.Site("POST")
//	)
//
//	func init() { symbols.Register() }
//
// Go initializes package-level variables before running init, and imported
// packages before importers, so every Site exists and belongs to its Table
// before Register runs. After that, Site.Symbol is one atomic flag load and one
// pointer load. A Site read before its Table is registered (for example from
// another package-level variable initializer) takes a slower path that interns
// lazily, guarded by the same flag. Tables created with WithStrictInit, and all
// tables in binaries built with the symtab_debug tag, panic with a
// *ProtocolError instead.
//
// # Leaks
//
// Interned strings are never freed. Interning untrusted or unbounded input is a
// memory-exhaustion hazard; use Symbols for identifiers, not for data.
//
// # Ordering and hashing
//
// Equality, map hashing and Compare use the handle's address, which depends on
// heap layout and differs between runs. Never persist a Symbol's address or
// anything derived from it. Use CompareText for lexicographic order.
package symbol
