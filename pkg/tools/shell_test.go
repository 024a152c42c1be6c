package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellToolExecuteReturnsCombinedOutput(t *testing.T) {
	tool := &ShellTool{}
	args, _ := json.Marshal(shellArgs{Command: "echo hi"})
	out, err := tool.Execute(context.Background(), SessionContext{}, args)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestShellToolExecuteNonZeroExitIsError(t *testing.T) {
	tool := &ShellTool{}
	args, _ := json.Marshal(shellArgs{Command: "exit 7"})
	_, err := tool.Execute(context.Background(), SessionContext{}, args)
	assert.Error(t, err)
}

func TestShellToolExecuteMissingCommandErrors(t *testing.T) {
	tool := &ShellTool{}
	_, err := tool.Execute(context.Background(), SessionContext{}, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestShellToolExecuteTimesOut(t *testing.T) {
	tool := &ShellTool{DefaultTimeout: 100 * time.Millisecond}
	args, _ := json.Marshal(shellArgs{Command: "sleep 5"})
	_, err := tool.Execute(context.Background(), SessionContext{}, args)
	assert.Error(t, err)
}

func TestShellToolDefaultPolicyIsDestructiveNonIdempotent(t *testing.T) {
	p := (&ShellTool{}).DefaultPolicy()
	assert.True(t, p.Destructive)
	assert.False(t, p.Idempotent)
}
