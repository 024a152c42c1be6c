package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMCPNameReplacesInvalidChars(t *testing.T) {
	assert.Equal(t, "server_tool_name", sanitizeMCPName("server.tool name"))
}

func TestSanitizeMCPNameKeepsAllowedChars(t *testing.T) {
	assert.Equal(t, "server_tool-1", sanitizeMCPName("server_tool-1"))
}

func TestSanitizeMCPNameTruncatesToMaxLength(t *testing.T) {
	long := ""
	for i := 0; i < maxMCPToolNameLength+20; i++ {
		long += "a"
	}
	out := sanitizeMCPName(long)
	assert.Len(t, out, maxMCPToolNameLength)
}

func TestBuildCommandMergesEnv(t *testing.T) {
	cmd := buildCommand(MCPServerConfig{
		Command: "true",
		Env:     map[string]string{"FOO": "bar"},
	})
	found := false
	for _, e := range cmd.Env {
		if e == "FOO=bar" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoadMCPToolsReturnsErrorWhenAllServersFail(t *testing.T) {
	_, err := LoadMCPTools(context.Background(), []MCPServerConfig{
		{Name: "broken", Command: "/nonexistent/mcp/server/binary"},
	})
	assert.Error(t, err)
}

func TestLoadMCPToolsEmptyServerListReturnsEmpty(t *testing.T) {
	tools, err := LoadMCPTools(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tools)
}
