package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vtcode/vtcode/pkg/procsup"
	"github.com/vtcode/vtcode/pkg/vterr"
)

// shellOutputCap truncates shell output the same way the teacher's
// shell_unix.go caps exec output, to keep a single command's result from
// blowing the context budget.
const shellOutputCap = 10000

// ShellTool runs a command line through "sh -c" to completion, merging
// stdout/stderr, and returns the (possibly truncated) combined output. It is
// the destructive-by-default tool the safety gateway's name-based
// classification keys on.
type ShellTool struct {
	DefaultTimeout time.Duration
}

func (t *ShellTool) Name() string        { return "shell" }
func (t *ShellTool) Description() string { return "Runs a shell command and returns its combined stdout/stderr." }
func (t *ShellTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command": {"type": "string", "description": "Shell command line to execute."}
		},
		"required": ["command"]
	}`)
}
func (t *ShellTool) DefaultPolicy() Policy { return Policy{Destructive: true, Idempotent: false} }

type shellArgs struct {
	Command string `json:"command"`
}

func (t *ShellTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	var a shellArgs
	if err := json.Unmarshal(args, &a); err != nil || a.Command == "" {
		return "", vterr.New(vterr.KindToolInvalidArgs, "shell tool requires a non-empty \"command\" string")
	}

	timeout := t.DefaultTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spawned, err := procsup.Spawn(runCtx, procsup.SpawnOptions{
		Program: "sh",
		Args:    []string{"-c", a.Command},
		Dir:     sc.WorkingDirectory,
		Mode:    procsup.ModePipe,
		Stdin:   procsup.StdinNull,
	})
	if err != nil {
		return "", vterr.Wrap(vterr.KindProcessSpawnFailed, "failed to spawn shell command", err)
	}

	out, exitCode := procsup.CollectOutputUntilExit(runCtx, spawned.Output, spawned.ExitCh, spawned.Handle, timeout)
	text := string(out)
	if len(text) > shellOutputCap {
		text = fmt.Sprintf("%s... (truncated, %d more chars)", text[:shellOutputCap], len(text)-shellOutputCap)
	}
	if exitCode == -1 && !spawned.Handle.HasExited() {
		_ = spawned.Handle.Terminate()
		return "", vterr.New(vterr.KindProcessTimedOut, fmt.Sprintf("command timed out after %s", timeout))
	}
	if exitCode != 0 {
		return "", vterr.New(vterr.KindToolExecutionFailed, fmt.Sprintf("exit code %d: %s", exitCode, text))
	}
	return text, nil
}
