package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewComputesTokensAndNoSavingsWhenIdentical(t *testing.T) {
	r := New("t", "same", "same")
	assert.Equal(t, r.Meta.Tokens.LLMTokens, r.Meta.Tokens.UITokens)
	assert.Equal(t, 0, r.Meta.Tokens.SavingsTokens)
}

func TestSimpleMirrorsContentToBothChannels(t *testing.T) {
	r := Simple("t", "hello")
	assert.Equal(t, "hello", r.LLMContent)
	assert.Equal(t, "hello", r.UIContent)
	assert.True(t, r.Success)
}

func TestMirrorShortContentIsSimple(t *testing.T) {
	r := Mirror("t", "short text")
	assert.Equal(t, "short text", r.LLMContent)
	assert.Equal(t, "short text", r.UIContent)
}

func TestMirrorLongContentTruncatesLLMChannelOnly(t *testing.T) {
	long := strings.Repeat("x", mirrorTruncateLimit+100)
	r := Mirror("t", long)
	assert.Less(t, len(r.LLMContent), len(long))
	assert.Equal(t, long, r.UIContent)
	assert.Contains(t, r.LLMContent, "truncated")
}

func TestErrorResultShapesLLMAndUIContent(t *testing.T) {
	r := ErrorResult("shell", "boom")
	assert.False(t, r.Success)
	assert.Equal(t, "Tool failed: boom", r.LLMContent)
	assert.Equal(t, "Error: boom", r.UIContent)
	assert.Equal(t, "boom", r.Err)
}

func TestSilentResultSetsSilentFlag(t *testing.T) {
	r := SilentResult("t", "ack")
	assert.True(t, r.Silent)
	assert.True(t, r.Success)
}

func TestIsSignificantSavingsTrueWhenUIMuchLargerThanLLM(t *testing.T) {
	r := New("t", "short", strings.Repeat("y", 1000))
	assert.True(t, r.IsSignificantSavings())
}

func TestIsSignificantSavingsFalseWhenChannelsEqual(t *testing.T) {
	r := New("t", "same", "same")
	assert.False(t, r.IsSignificantSavings())
}

func TestResultInvariantLLMTokensNeverExceedUITokensForMirror(t *testing.T) {
	long := strings.Repeat("z", mirrorTruncateLimit*3)
	r := Mirror("t", long)
	assert.LessOrEqual(t, r.Meta.Tokens.LLMTokens, r.Meta.Tokens.UITokens)
}
