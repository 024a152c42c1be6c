package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyIsDeterministic(t *testing.T) {
	k1, err := CacheKey("shell", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	k2, err := CacheKey("shell", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCacheKeyIncludesToolNamePrefix(t *testing.T) {
	k, err := CacheKey("shell", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	assert.Contains(t, k, "shell:")
}

func TestCacheKeyDiffersForDifferentArgs(t *testing.T) {
	k1, err := CacheKey("shell", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	k2, err := CacheKey("shell", map[string]any{"cmd": "pwd"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestCacheKeyDiffersForDifferentToolNamesSameArgs(t *testing.T) {
	k1, err := CacheKey("shell", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	k2, err := CacheKey("other", map[string]any{"cmd": "ls"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestCacheKeyErrorsOnUnsupportedArgs(t *testing.T) {
	_, err := CacheKey("shell", make(chan int))
	assert.Error(t, err)
}
