package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	t.Parallel()

	g := NewGate([]int64{42, 1000})

	assert.True(t, g.IsAllowed(42))
	assert.True(t, g.IsAllowed(1000))
	assert.False(t, g.IsAllowed(43))
	assert.False(t, g.IsAllowed(0))
	assert.False(t, g.IsAllowed(-42))
}

func TestEmptyGateDeniesEveryone(t *testing.T) {
	t.Parallel()

	g := NewGate(nil)
	assert.False(t, g.IsAllowed(1))
}
