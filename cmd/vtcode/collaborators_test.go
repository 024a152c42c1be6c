package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcode/vtcode/pkg/providers"
	"github.com/vtcode/vtcode/pkg/session"
)

func TestStaticSummarizerSystemPromptNamesWorkspaceAndModel(t *testing.T) {
	s := staticSummarizer{model: "gpt-test", workspace: "/workspace"}
	prompt, err := s.SystemPrompt(context.Background(), session.New("s1", session.Constraints{}))
	require.NoError(t, err)
	assert.Contains(t, prompt, "/workspace")
	assert.Contains(t, prompt, "gpt-test")
}

func TestStaticSummarizerSummarizeDroppedTruncatesLongText(t *testing.T) {
	s := staticSummarizer{}
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	out, err := s.SummarizeDropped(context.Background(), []providers.Message{{Role: providers.RoleUser, Text: long}})
	require.NoError(t, err)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
}

func TestSessionIDReturnsUniqueValues(t *testing.T) {
	a := sessionID()
	b := sessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestAbsPathCleansRelativePath(t *testing.T) {
	abs, err := absPath(".")
	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, wd, abs)
}

func TestCLIApprovalDecideYesApprovesOnce(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	go func() {
		w.WriteString("y\n")
		w.Close()
	}()

	approved, always := cliApproval{}.Decide(context.Background(), "shell", []byte(`{}`), "destructive command")
	assert.True(t, approved)
	assert.False(t, always)
}

func TestCLIApprovalDecideAlwaysApprovesForSession(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	go func() {
		w.WriteString("a\n")
		w.Close()
	}()

	approved, always := cliApproval{}.Decide(context.Background(), "shell", []byte(`{}`), "destructive command")
	assert.True(t, approved)
	assert.True(t, always)
}

func TestCLIApprovalDecideDefaultDenies(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	go func() {
		w.WriteString("\n")
		w.Close()
	}()

	approved, always := cliApproval{}.Decide(context.Background(), "shell", []byte(`{}`), "destructive command")
	assert.False(t, approved)
	assert.False(t, always)
}
