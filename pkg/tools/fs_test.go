package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathRejectsEscape(t *testing.T) {
	_, err := ValidatePath("/workspace", "../etc/passwd")
	assert.Error(t, err)
}

func TestValidatePathAllowsRelativeWithinRoot(t *testing.T) {
	resolved, err := ValidatePath("/workspace", "sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/workspace/sub/file.txt"), resolved)
}

func TestValidatePathAllowsRootItself(t *testing.T) {
	resolved, err := ValidatePath("/workspace", ".")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/workspace"), resolved)
}

func TestWriteThenReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sc := SessionContext{WorkspaceRoot: dir}

	writeTool := &WriteFileTool{}
	args, _ := json.Marshal(writeFileArgs{Path: "note.txt", Content: "hello"})
	_, err := writeTool.Execute(context.Background(), sc, args)
	require.NoError(t, err)

	readTool := &ReadFileTool{}
	readArgs, _ := json.Marshal(readFileArgs{Path: "note.txt"})
	content, err := readTool.Execute(context.Background(), sc, readArgs)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestWriteFileRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	sc := SessionContext{WorkspaceRoot: dir}
	writeTool := &WriteFileTool{}
	args, _ := json.Marshal(writeFileArgs{Path: "../escape.txt", Content: "x"})
	_, err := writeTool.Execute(context.Background(), sc, args)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadFileMissingPathArgErrors(t *testing.T) {
	readTool := &ReadFileTool{}
	_, err := readTool.Execute(context.Background(), SessionContext{WorkspaceRoot: t.TempDir()}, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestWriteFileDefaultPolicyIsDestructive(t *testing.T) {
	assert.True(t, (&WriteFileTool{}).DefaultPolicy().Destructive)
}

func TestReadFileDefaultPolicyIsNotDestructive(t *testing.T) {
	assert.False(t, (&ReadFileTool{}).DefaultPolicy().Destructive)
}
