package testutil

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// AssertSame fails unless got == want.
//
// assert.Equal is the wrong tool for handles such as symbol.Symbol: it uses
// reflect.DeepEqual, which follows pointers and compares the text behind
// them, so two handles from disjoint registries would pass.
func AssertSame[T comparable](t assert.TestingT, want, got T, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if want == got {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("Not the same handle:\n\twant: %v\n\tgot:  %v", want, got), msgAndArgs...)
}

// AssertDistinct fails if a == b.
func AssertDistinct[T comparable](t assert.TestingT, a, b T, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if a != b {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("Expected distinct handles, both are %v", a), msgAndArgs...)
}
