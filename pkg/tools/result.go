package tools

import "fmt"

// TokenCounts reports the byte-length/4 token estimate for each channel of a
// ToolResult, plus the derived savings.
type TokenCounts struct {
	LLMTokens     int
	UITokens      int
	SavingsTokens int
	SavingsPercent float64
}

// Metadata carries the four parts spec.md's C2 names: file references, line
// numbers, a free-form structured map, and (once computed) token counts.
type Metadata struct {
	FileRefs    []string
	LineNumbers []int
	Structured  map[string]any
	Tokens      TokenCounts
}

// Result is the dual-channel ToolResult: a concise llm_content optimized for
// token cost, and a rich ui_content that may include ANSI/full listings.
//
// Invariant: Meta.Tokens.LLMTokens does not exceed Meta.Tokens.UITokens; when
// equal the result is "simple". ErrorResult is the exception: its
// "Tool failed: " llm prefix is longer than its "Error: " ui prefix.
type Result struct {
	ToolName string

	LLMContent string
	UIContent  string

	Success bool
	Err     string

	Meta Metadata

	// Silent suppresses UI rendering (the result still reaches the model).
	Silent bool
	// Async marks a result produced by a background callback rather than the
	// synchronous Execute return.
	Async bool
	// FromCache marks a result served by the executor's caching middleware.
	FromCache bool
}

// estimateTokens applies the byte-length/4 heuristic (minimum 1) spec.md's
// C2 section specifies for both channels.
func estimateTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		return 1
	}
	return n
}

// WithComputedTokens fills in Meta.Tokens from the current LLMContent and
// UIContent. It does not clamp, so a result whose llm channel is the longer
// one reports llm_tokens > ui_tokens and zero savings; result_test.go checks
// the invariant for Mirror.
func (r Result) WithComputedTokens() Result {
	llm := estimateTokens(r.LLMContent)
	ui := estimateTokens(r.UIContent)
	savings := 0
	if ui > llm {
		savings = ui - llm
	}
	pct := 0.0
	if ui > 0 {
		pct = 100 * float64(savings) / float64(ui)
	}
	r.Meta.Tokens = TokenCounts{
		LLMTokens:      llm,
		UITokens:       ui,
		SavingsTokens:  savings,
		SavingsPercent: pct,
	}
	return r
}

// IsSignificantSavings reports whether this result's dual-channel savings
// meet the "significant" bar (>= 50%) spec.md defines.
func (r Result) IsSignificantSavings() bool {
	return r.Meta.Tokens.SavingsPercent >= 50
}

// New constructs a dual-channel result with explicit llm/ui content.
func New(toolName, llmContent, uiContent string) Result {
	r := Result{ToolName: toolName, LLMContent: llmContent, UIContent: uiContent, Success: true}
	return r.WithComputedTokens()
}

// Simple constructs a result where both channels carry identical content.
func Simple(toolName, content string) Result {
	return New(toolName, content, content)
}

// mirrorTruncateLimit is the single-channel mirroring caveat from spec.md's
// C2 section: mirrored output beyond this length gets its llm_content
// truncated while ui_content keeps the full text.
const mirrorTruncateLimit = 500

// Mirror builds a dual-channel result from a single-channel legacy tool's
// plain output, applying the truncation-with-caveat rule.
func Mirror(toolName, content string) Result {
	if len(content) <= mirrorTruncateLimit {
		return Simple(toolName, content)
	}
	truncated := fmt.Sprintf("%s... [truncated, %d chars total]", content[:mirrorTruncateLimit], len(content))
	r := Result{ToolName: toolName, LLMContent: truncated, UIContent: content, Success: true}
	return r.WithComputedTokens()
}

// ErrorResult constructs the standard failure shape: llm_content =
// "Tool failed: {msg}", ui_content = "Error: {msg}", success = false.
func ErrorResult(toolName, msg string) Result {
	r := Result{
		ToolName:   toolName,
		LLMContent: fmt.Sprintf("Tool failed: %s", msg),
		UIContent:  fmt.Sprintf("Error: %s", msg),
		Success:    false,
		Err:        msg,
	}
	return r.WithComputedTokens()
}

// SilentResult constructs a successful result that should not be rendered in
// the UI (e.g. a background process write acknowledgement).
func SilentResult(toolName, llmContent string) Result {
	r := New(toolName, llmContent, llmContent)
	r.Silent = true
	return r
}
