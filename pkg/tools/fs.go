package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vtcode/vtcode/pkg/vterr"
)

// ValidatePath rejects paths that escape workspaceRoot via "..", matching the
// teacher's tools.ValidatePath sandboxing helper.
func ValidatePath(workspaceRoot, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workspaceRoot, abs)
	}
	clean := filepath.Clean(abs)
	rootClean := filepath.Clean(workspaceRoot)
	if clean != rootClean && !strings.HasPrefix(clean, rootClean+string(filepath.Separator)) {
		return "", vterr.New(vterr.KindToolInvalidArgs, fmt.Sprintf("path %q escapes workspace root", path))
	}
	return clean, nil
}

// ReadFileTool reads a UTF-8 text file under the workspace root and returns
// its full content as the tool result's content.
type ReadFileTool struct{}

func (t *ReadFileTool) Name() string        { return "read_file" }
func (t *ReadFileTool) Description() string { return "Reads a file's contents by path." }
func (t *ReadFileTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`)
}
func (t *ReadFileTool) DefaultPolicy() Policy { return Policy{Destructive: false, Idempotent: true} }

type readFileArgs struct {
	Path string `json:"path"`
}

func (t *ReadFileTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil || a.Path == "" {
		return "", vterr.New(vterr.KindToolInvalidArgs, "read_file requires a non-empty \"path\" string")
	}
	resolved, err := ValidatePath(sc.WorkspaceRoot, a.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "read failed", err)
	}
	return string(data), nil
}

// WriteFileTool overwrites (or creates) a file under the workspace root. It
// is in the destructive set the safety gateway classifies by name.
type WriteFileTool struct{}

func (t *WriteFileTool) Name() string        { return "write_file" }
func (t *WriteFileTool) Description() string { return "Writes content to a file, creating or overwriting it." }
func (t *WriteFileTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"}},"required":["path","content"]}`)
}
func (t *WriteFileTool) DefaultPolicy() Policy { return Policy{Destructive: true, Idempotent: false} }

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (t *WriteFileTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	var a writeFileArgs
	if err := json.Unmarshal(args, &a); err != nil || a.Path == "" {
		return "", vterr.New(vterr.KindToolInvalidArgs, "write_file requires \"path\" and \"content\" strings")
	}
	resolved, err := ValidatePath(sc.WorkspaceRoot, a.Path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "mkdir failed", err)
	}
	if err := os.WriteFile(resolved, []byte(a.Content), 0o644); err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "write failed", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(a.Content), a.Path), nil
}
