package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtcode/vtcode/pkg/config"
	"github.com/vtcode/vtcode/pkg/safety"
)

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, safety.RiskLow, parseRiskLevel("low"))
	assert.Equal(t, safety.RiskLow, parseRiskLevel("LOW"))
	assert.Equal(t, safety.RiskHigh, parseRiskLevel("high"))
	assert.Equal(t, safety.RiskMedium, parseRiskLevel("medium"))
	assert.Equal(t, safety.RiskMedium, parseRiskLevel("unknown"))
	assert.Equal(t, safety.RiskMedium, parseRiskLevel(""))
}

func TestWorkspaceTrust(t *testing.T) {
	assert.Equal(t, safety.TrustTrusted, workspaceTrust(true))
	assert.Equal(t, safety.TrustUntrusted, workspaceTrust(false))
}

func TestMCPServerConfigsConvertsEachSpec(t *testing.T) {
	specs := []config.MCPServerSpec{
		{Name: "fs", Command: "mcp-fs", Args: []string{"--root", "."}, Env: map[string]string{"X": "1"}},
	}
	out := mcpServerConfigs(specs)
	assert.Len(t, out, 1)
	assert.Equal(t, "fs", out[0].Name)
	assert.Equal(t, "mcp-fs", out[0].Command)
	assert.Equal(t, []string{"--root", "."}, out[0].Args)
	assert.Equal(t, "1", out[0].Env["X"])
}

func TestMCPServerConfigsEmptyInputReturnsEmptySlice(t *testing.T) {
	out := mcpServerConfigs(nil)
	assert.Empty(t, out)
}

func TestDefaultShellUsesEnvWhenSet(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	assert.Equal(t, "/bin/zsh", defaultShell())
}

func TestDefaultShellFallsBackWhenUnset(t *testing.T) {
	t.Setenv("SHELL", "")
	assert.Equal(t, "/bin/sh", defaultShell())
}
