package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func (r *run) assert(a Assertion) error {
	switch a.Type {
	case AssertSame:
		first := r.handles[a.Handles[0]]
		for _, h := range a.Handles[1:] {
			if r.handles[h] != first {
				return &AssertionError{
					Type:     AssertSame,
					Expected: strings.Join(a.Handles, " == "),
					Actual:   fmt.Sprintf("%s is %s, %s is %s", a.Handles[0], r.name(first), h, r.name(r.handles[h])),
				}
			}
		}
	case AssertDistinct:
		seen := make(map[string]string, len(a.Handles))
		for _, h := range a.Handles {
			n := r.name(r.handles[h])
			if prev, dup := seen[n]; dup {
				return &AssertionError{
					Type:     AssertDistinct,
					Expected: "pairwise distinct " + strings.Join(a.Handles, ", "),
					Actual:   fmt.Sprintf("%s and %s are both %s", prev, h, n),
				}
			}
			seen[n] = h
		}
	case AssertLen:
		if n := r.reg.Len(); n != a.Count {
			return &AssertionError{
				Type:     AssertLen,
				Expected: fmt.Sprintf("%d interned texts", a.Count),
				Actual:   fmt.Sprintf("%d", n),
			}
		}
	}
	return nil
}
