package symbol

import (
	"errors"
	"fmt"
)

var (
	// ErrTableSealed indicates a Site declared after its table was registered.
	ErrTableSealed = errors.New("symbol: table already registered")

	// ErrDisjointRegistry indicates a table bound to a different registry than
	// the one it is being attached to. Symbols from the two registries never
	// compare equal.
	ErrDisjointRegistry = errors.New("symbol: table bound to a different registry")
)

// ProtocolErrorCode categorizes protocol violations.
type ProtocolErrorCode string

const (
	// ErrCodeSiteUninitialized indicates a Site read before its table was
	// registered, in a configuration that requires eager registration.
	ErrCodeSiteUninitialized ProtocolErrorCode = "SITE_UNINITIALIZED"
)

// ProtocolError reports misuse of the site registration protocol. It is
// raised with panic, never returned: continuing would hand out an unresolved
// Symbol.
type ProtocolError struct {
	Code    ProtocolErrorCode
	Table   string
	Text    string
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s (table=%s, text=%q)", e.Code, e.Message, e.Table, e.Text)
}

// IsProtocolError reports whether err is, or wraps, a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func newUninitializedError(s *Site) *ProtocolError {
	return &ProtocolError{
		Code:  ErrCodeSiteUninitialized,
		Table: s.table.name,
		Text:  s.lit,
		Message: "symbol site read before its table was registered; " +
			"either the package init function does not call Register, " +
			"the site is read from a package-level variable initializer, " +
			"or the table belongs to a plugin that was never attached",
	}
}
