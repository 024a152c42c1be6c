package nullprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcode/vtcode/pkg/providers"
)

func TestNewDefaultsModelName(t *testing.T) {
	assert.Equal(t, "null-echo", New("").DefaultModel())
	assert.Equal(t, "custom", New("custom").DefaultModel())
}

func TestCompleteEchoesLastUserMessage(t *testing.T) {
	p := New("")
	req := providers.Request{Messages: []providers.Message{
		{Role: providers.RoleUser, Text: "hello"},
		{Role: providers.RoleAssistant, Text: "hi there"},
		{Role: providers.RoleUser, Text: "how are you"},
	}}
	resp, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "echo: how are you", resp.Text)
	assert.Equal(t, providers.FinishStop, resp.FinishReason)
}

func TestCompleteWithNoUserMessageReturnsPlaceholder(t *testing.T) {
	p := New("")
	resp, err := p.Complete(context.Background(), providers.Request{})
	require.NoError(t, err)
	assert.Equal(t, "(no user message to echo)", resp.Text)
}

func TestStreamEmitsTokensThenCompletedMatchingCompleteText(t *testing.T) {
	p := New("")
	req := providers.Request{Messages: []providers.Message{{Role: providers.RoleUser, Text: "a b c"}}}

	ch, err := p.Stream(context.Background(), req)
	require.NoError(t, err)

	var text string
	var sawCompleted bool
	for ev := range ch {
		if ev.Kind == providers.EventToken {
			text += ev.Delta
		}
		if ev.Kind == providers.EventCompleted {
			sawCompleted = true
			assert.Equal(t, "echo: a b c", ev.Response.Text)
		}
	}
	assert.True(t, sawCompleted)
	assert.Equal(t, "echo: a b c", text)
}

func TestStreamStopsEarlyOnContextCancellation(t *testing.T) {
	p := New("")
	ctx, cancel := context.WithCancel(context.Background())
	req := providers.Request{Messages: []providers.Message{{Role: providers.RoleUser, Text: "one two three four five"}}}

	ch, err := p.Stream(ctx, req)
	require.NoError(t, err)
	cancel()

	for range ch {
		// drain; the goroutine should stop promptly without panicking.
	}
}
