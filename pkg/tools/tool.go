package tools

import (
	"context"
	"encoding/json"
)

// Policy is a tool's default admission policy. The executor reads Idempotent
// to decide whether to retry; the safety gateway (C3) does not read Policy
// and classifies destructive intent from its own configured tool names.
type Policy struct {
	Destructive bool
	Idempotent  bool
}

// SessionContext is what the executor hands to every tool invocation: ambient
// facts about the running session, never mutable tool state. Matches
// spec.md's "current working directory, workspace root, shell identifier, an
// event sink for progress events, and a warning recorder".
type SessionContext struct {
	WorkingDirectory string
	WorkspaceRoot    string
	Shell            string

	Events   ProgressSink
	Warnings WarningRecorder
}

// ProgressSink receives progress/approval events while a tool runs.
type ProgressSink interface {
	Approval(toolName string, args json.RawMessage, reason string) (approved bool)
}

// WarningRecorder accumulates non-fatal warnings surfaced to the session.
type WarningRecorder interface {
	Warn(message string)
}

// Tool is any object with a stable name, description, optional parameter
// schema, default policy, and a single-channel Execute entrypoint; the
// executor mirrors its output to both ToolResult channels per the truncation
// rule in result.go. Tools that fill both channels also implement DualTool.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	DefaultPolicy() Policy

	Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error)
}

// DualTool is implemented by tools that want direct control over both
// ToolResult channels instead of relying on single-channel mirroring.
type DualTool interface {
	Tool
	ExecuteDual(ctx context.Context, sc SessionContext, args json.RawMessage) (Result, error)
}

// AsyncTool is implemented by tools whose result arrives later via a
// callback rather than the synchronous Execute/ExecuteDual return, matching
// the teacher's AsyncTool/AsyncCallback pattern for long-running background
// operations (process sessions, in particular).
type AsyncTool interface {
	Tool
	ExecuteAsync(ctx context.Context, sc SessionContext, args json.RawMessage, callback func(Result)) error
}
