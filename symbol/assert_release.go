//go:build !symtab_debug

package symbol

const debugAssertions = false
