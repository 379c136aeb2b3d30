//go:build symtab_debug

package symbol

// debugAssertions makes every unregistered Site read a fatal ProtocolError.
const debugAssertions = true
