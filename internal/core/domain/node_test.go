package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
)

func TestNode(t *testing.T) {
	t.Parallel()

	node := domain.Node{
		"command":        []any{"make", "make install"},
		"root-read-only": true,
		"work-dir":       "/build/src",
		"layout":         []any{map[string]any{"element": "base.mason", "destination": "/"}},
	}

	require.NoError(t, node.ValidateKeys("command", "root-read-only", "work-dir", "layout"))
	require.ErrorIs(t, node.ValidateKeys("command"), domain.ErrInvalidConfig)

	cmds, err := node.StringList("command")
	require.NoError(t, err)
	assert.Equal(t, []string{"make", "make install"}, cmds)

	ro, err := node.Bool("root-read-only", false)
	require.NoError(t, err)
	assert.True(t, ro)

	dir, err := node.String("work-dir", "/build")
	require.NoError(t, err)
	assert.Equal(t, "/build/src", dir)

	def, err := node.String("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", def)

	layout, err := node.NodeList("layout")
	require.NoError(t, err)
	require.Len(t, layout, 1)
	assert.Equal(t, "base.mason", layout[0]["element"])

	_, err = node.Bool("work-dir", false)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	_, err = node.StringList("root-read-only")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	var k domain.CacheKey
	assert.True(t, k.IsZero())
	k.Digest[0] = 0xab
	k.Strength = domain.KeyStrong

	parsed, err := domain.ParseCacheKey(domain.KeyStrong, k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
	assert.Equal(t, "ab0000000000", k.Short())

	_, err = domain.ParseCacheKey(domain.KeyStrong, "abc")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
