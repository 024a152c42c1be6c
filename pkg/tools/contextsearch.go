package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/vtcode/vtcode/pkg/contextgather"
	"github.com/vtcode/vtcode/pkg/vterr"
)

// SearchContextTool is the model-facing entrypoint into the Context Gatherer
// (C10): it walks the workspace for a substring match, scores one
// contextgather.EntityMatch per hit, and returns the ranked, budgeted,
// snippet-rendered result. The walk/match step is this tool's own; the
// ranking, windowing, and token-budget enforcement all live in
// pkg/contextgather.
type SearchContextTool struct {
	Options contextgather.Options
}

func (t *SearchContextTool) Name() string { return "search_context" }
func (t *SearchContextTool) Description() string {
	return "Searches the workspace for a substring and returns ranked, budgeted snippets around each match."
}
func (t *SearchContextTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`)
}
func (t *SearchContextTool) DefaultPolicy() Policy { return Policy{Destructive: false, Idempotent: true} }

type searchContextArgs struct {
	Query string `json:"query"`
}

func (t *SearchContextTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	var a searchContextArgs
	if err := json.Unmarshal(args, &a); err != nil || a.Query == "" {
		return "", vterr.New(vterr.KindToolInvalidArgs, "search_context requires a non-empty \"query\" string")
	}

	matches, err := scanWorkspace(sc.WorkspaceRoot, a.Query)
	if err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "workspace scan failed", err)
	}
	if len(matches) == 0 {
		return "No matches found.", nil
	}

	gathered, err := contextgather.Gather(matches, t.Options)
	if err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "context gather failed", err)
	}
	return contextgather.Render(gathered), nil
}

// scanWorkspace does a plain substring scan over text files under root,
// scoring the first hit per file highest and later hits lower so Gather's
// per-file ranking has something to differentiate on.
func scanWorkspace(root, query string) ([]contextgather.EntityMatch, error) {
	var out []contextgather.EntityMatch

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Size() > 1<<20 {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 1<<20), 1<<20)
		lineNo := 0
		hits := 0
		for scanner.Scan() {
			lineNo++
			if hits >= 5 {
				break
			}
			if strings.Contains(scanner.Text(), query) {
				hits++
				out = append(out, contextgather.EntityMatch{
					FilePath:  path,
					LineStart: lineNo,
					LineEnd:   lineNo,
					BaseScore: 1.0 / float64(hits),
				})
			}
		}
		return nil
	})

	return out, err
}
