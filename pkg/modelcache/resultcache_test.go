package modelcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcode/vtcode/pkg/tools"
)

func TestResultCacheAdapterRoundTripsResult(t *testing.T) {
	adapter := ResultCacheAdapter{Cache: New(10, time.Minute, "")}
	want := tools.Simple("shell", "output text")

	adapter.Put("key1", want)
	got, ok := adapter.Get("key1")
	require.True(t, ok)
	assert.Equal(t, want.ToolName, got.ToolName)
	assert.Equal(t, want.LLMContent, got.LLMContent)
	assert.Equal(t, want.Success, got.Success)
}

func TestResultCacheAdapterMissingKeyReturnsFalse(t *testing.T) {
	adapter := ResultCacheAdapter{Cache: New(10, time.Minute, "")}
	_, ok := adapter.Get("absent")
	assert.False(t, ok)
}
