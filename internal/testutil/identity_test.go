package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type handle struct{ p *string }

// recorder captures failures instead of failing the enclosing test.
type recorder struct{ failed bool }

func (r *recorder) Errorf(string, ...any) { r.failed = true }

func TestAssertSame_ComparesIdentity(t *testing.T) {
	x, y := "same", "same"
	a, b := handle{&x}, handle{&y}

	assert.Equal(t, a, b, "DeepEqual sees equal text")

	rec := &recorder{}
	assert.False(t, AssertSame(rec, a, b))
	assert.True(t, rec.failed)
	assert.True(t, AssertSame(t, a, handle{&x}))
}

func TestAssertDistinct(t *testing.T) {
	x, y := "same", "same"
	a, b := handle{&x}, handle{&y}

	assert.True(t, AssertDistinct(t, a, b))

	rec := &recorder{}
	assert.False(t, AssertDistinct(rec, a, a))
	assert.True(t, rec.failed)
}
