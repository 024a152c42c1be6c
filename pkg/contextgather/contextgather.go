// Package contextgather implements the Context Gatherer (C10): given ranked
// entity matches, it assembles a token-budgeted preface of file snippets for
// the next turn. It is a hint producer only; the scheduler may use or ignore
// its output. The caching/budget-accounting discipline is grounded on the
// teacher's pkg/agent/context.go BuildSystemPromptWithCache (a cached,
// budget-aware system-prompt builder); the ranking and snippet-window logic
// itself is new, since the teacher's builder assembles a fixed system
// prompt, not a ranked snippet set.
package contextgather

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// EntityMatch is one candidate hit the caller's search/retrieval layer
// already found; the gatherer only ranks, windows, and budgets these.
type EntityMatch struct {
	FilePath          string
	LineStart         int
	LineEnd           int
	BaseScore         float64
	RecentlyAccessed  bool
	IsHotFile         bool
}

func (m EntityMatch) rankScore() float64 {
	score := m.BaseScore
	if m.RecentlyAccessed {
		score += 0.3
	}
	if m.IsHotFile {
		score += 0.2
	}
	return score
}

// Defaults per spec.md's C10 section.
const (
	DefaultMaxContextFiles    = 3
	DefaultMaxSnippetsPerFile = 20
	DefaultMaxContextTokens   = 2000
	DefaultSnippetPadLines    = 10
)

// Options configures one gather pass; zero values fall back to the
// documented defaults.
type Options struct {
	MaxContextFiles    int
	MaxSnippetsPerFile int
	MaxContextTokens   int
	SnippetPadLines    int
}

func (o Options) withDefaults() Options {
	if o.MaxContextFiles <= 0 {
		o.MaxContextFiles = DefaultMaxContextFiles
	}
	if o.MaxSnippetsPerFile <= 0 {
		o.MaxSnippetsPerFile = DefaultMaxSnippetsPerFile
	}
	if o.MaxContextTokens <= 0 {
		o.MaxContextTokens = DefaultMaxContextTokens
	}
	if o.SnippetPadLines <= 0 {
		o.SnippetPadLines = DefaultSnippetPadLines
	}
	return o
}

// Snippet is one accepted, rendered excerpt.
type Snippet struct {
	FilePath  string
	LineStart int
	LineEnd   int
	Text      string
}

// GatheredContext is the Gatherer's output: the accepted snippets and the
// estimated token cost actually spent. Render adds the section header.
type GatheredContext struct {
	Snippets        []Snippet
	EstimatedTokens int
	TruncatedEarly  bool
}

// estimateTokens applies the byte-length/4 heuristic (minimum 1) uniformly
// used for token accounting.
func estimateTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		return 1
	}
	return n
}

// Gather ranks matches by (base_score + 0.3*recently_accessed +
// 0.2*is_hot_file) descending (tie-break by path), reads the top
// MaxContextFiles files, and emits padded snippets until MaxContextTokens is
// exceeded, keeping already-accepted snippets.
func Gather(matches []EntityMatch, opts Options) (GatheredContext, error) {
	opts = opts.withDefaults()

	byFile := groupAndRankFiles(matches)
	if len(byFile) > opts.MaxContextFiles {
		byFile = byFile[:opts.MaxContextFiles]
	}

	var out GatheredContext
	tokenBudgetSpent := 0

	for _, fm := range byFile {
		lines, err := readLines(fm.path)
		if err != nil {
			continue // a missing/unreadable file is skipped, not fatal to the gather
		}

		count := 0
		for _, m := range fm.matches {
			if count >= opts.MaxSnippetsPerFile {
				break
			}
			start := clamp(m.LineStart-opts.SnippetPadLines, 1, len(lines))
			end := clamp(m.LineEnd+opts.SnippetPadLines, 1, len(lines))
			text := strings.Join(lines[start-1:end], "\n")

			cost := estimateTokens(text)
			if tokenBudgetSpent+cost > opts.MaxContextTokens {
				out.TruncatedEarly = true
				return finalizeGather(out, tokenBudgetSpent), nil
			}

			out.Snippets = append(out.Snippets, Snippet{FilePath: fm.path, LineStart: start, LineEnd: end, Text: text})
			tokenBudgetSpent += cost
			count++
		}
	}

	return finalizeGather(out, tokenBudgetSpent), nil
}

func finalizeGather(g GatheredContext, tokens int) GatheredContext {
	g.EstimatedTokens = tokens
	return g
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type fileMatches struct {
	path    string
	score   float64
	matches []EntityMatch
}

func groupAndRankFiles(matches []EntityMatch) []fileMatches {
	byPath := make(map[string]*fileMatches)
	var order []string
	for _, m := range matches {
		fm, ok := byPath[m.FilePath]
		if !ok {
			fm = &fileMatches{path: m.FilePath}
			byPath[m.FilePath] = fm
			order = append(order, m.FilePath)
		}
		fm.matches = append(fm.matches, m)
		if s := m.rankScore(); s > fm.score {
			fm.score = s
		}
	}

	out := make([]fileMatches, 0, len(order))
	for _, p := range order {
		fm := *byPath[p]
		sort.Slice(fm.matches, func(i, j int) bool { return fm.matches[i].rankScore() > fm.matches[j].rankScore() })
		out = append(out, fm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].path < out[j].path
	})
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// Render formats a GatheredContext as the stable section header plus fenced
// blocks with (line_start, line_end) markers, for prepending as a
// system-level hint.
func Render(g GatheredContext) string {
	if len(g.Snippets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Gathered context\n\n")
	for _, s := range g.Snippets {
		fmt.Fprintf(&b, "%s (lines %d-%d):\n```\n%s\n```\n\n", s.FilePath, s.LineStart, s.LineEnd, s.Text)
	}
	return b.String()
}
