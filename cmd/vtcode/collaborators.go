package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vtcode/vtcode/pkg/providers"
	"github.com/vtcode/vtcode/pkg/session"
)

// staticSummarizer is the minimal Summarizer collaborator: a fixed system
// prompt naming the model and workspace, and a plain enumeration of dropped
// message roles/lengths standing in for a real LLM-generated summary. A
// richer front end would replace SummarizeDropped with its own call back
// into the provider.
type staticSummarizer struct {
	model     string
	workspace string
}

func (s staticSummarizer) SystemPrompt(ctx context.Context, st *session.State) (string, error) {
	return fmt.Sprintf(
		"You are vtcode, an interactive terminal coding agent operating in %s using model %s. "+
			"You may call the registered tools to read, write, and search files, or run shell commands. "+
			"Destructive actions require approval unless the workspace is marked trusted.",
		s.workspace, s.model,
	), nil
}

func (s staticSummarizer) SummarizeDropped(ctx context.Context, dropped []providers.Message) (string, error) {
	var b strings.Builder
	b.WriteString("Earlier turns were trimmed from context. Summary:\n")
	for _, m := range dropped {
		text := m.Text
		if len(text) > 80 {
			text = text[:80] + "..."
		}
		fmt.Fprintf(&b, "- %s: %s\n", m.Role, text)
	}
	return b.String(), nil
}

// cliApproval resolves NeedsApproval decisions by prompting on stdin/stderr,
// matching the teacher's interactive-confirmation pattern in its onboard/auth
// flows (fmt.Scanln-style y/n prompt).
type cliApproval struct{}

func (cliApproval) Decide(ctx context.Context, toolName string, args []byte, reason string) (approve bool, alwaysAllowSession bool) {
	fmt.Fprintf(os.Stderr, "\napproval requested for %q: %s\nargs: %s\nAllow? [y/N/a=also allow the next call] ", toolName, reason, string(args))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, false
	case "a", "always":
		return true, true
	default:
		return false, false
	}
}

func sessionID() string {
	return uuid.NewString()
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
