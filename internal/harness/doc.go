// Package harness runs YAML conformance scenarios against a fresh symbol
// registry.
//
// A scenario declares site tables and a flow of steps: registering a table,
// reading a site, interning or looking up run-time text, and round-tripping a
// handle through its opaque form. Every step appends a TraceEvent. Symbols in
// the trace are named s1, s2, ... in order of first appearance, so traces are
// deterministic and can be compared against golden files:
//
//	go test ./internal/harness -update
//
// Assertions run after the flow and check identity (same, distinct) and the
// registry size (len).
package harness
