package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name string
}

func (f fakeTool) Name() string                { return f.name }
func (f fakeTool) Description() string         { return "a fake tool" }
func (f fakeTool) Schema() json.RawMessage      { return json.RawMessage(`{}`) }
func (f fakeTool) DefaultPolicy() Policy        { return Policy{} }
func (f fakeTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	return "ok", nil
}

func TestRegistryGetMissingToolErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	assert.Error(t, err)
}

func TestRegistryListToolsIsSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "zeta"})
	r.Register(fakeTool{name: "alpha"})
	r.Register(fakeTool{name: "mid"})

	names := []string{}
	for _, t := range r.ListTools() {
		names = append(names, t.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRegistryPreapprovalIsConsumedOnce(t *testing.T) {
	r := NewRegistry()
	r.MarkPreapproved("shell")

	require.True(t, r.ConsumePreapproval("shell"))
	assert.False(t, r.ConsumePreapproval("shell"))
}

func TestRegistryHasTool(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "shell"})
	assert.True(t, r.HasTool("shell"))
	assert.False(t, r.HasTool("absent"))
}
