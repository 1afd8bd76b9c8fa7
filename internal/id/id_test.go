package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	// Generate many IDs and verify they're unique
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate(PrefixWaypoint)
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate id generated: %s", id)
		ids[id] = true
	}
}

func TestGenerate_Prefix(t *testing.T) {
	id, err := Generate(PrefixDetail)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "det-"))
	// prefix + dash + 21 char nanoid
	assert.Len(t, id, len(PrefixDetail)+1+21)
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixTag)
		assert.True(t, strings.HasPrefix(id, "tag-"))
	})
}
