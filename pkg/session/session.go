// Package session implements the Conversation State & Normalizer (C6): the
// provider-agnostic message log, its dual-ownership provider-specific
// content log, the tool-call/tool-response pairing invariant, and the
// safe-split algorithm used before context trimming. The pairing enforcement
// generalizes the teacher's pkg/agent/sanitize.go sanitizeToolPairs function;
// the safe-split scan is new, grounded on the same call-id/assistant-index
// mapping sanitizeToolPairs builds.
package session

import (
	"sync"
	"time"

	"github.com/vtcode/vtcode/pkg/providers"
)

// Outcome is the terminal classification of a session, set exactly once.
type Outcome string

const (
	OutcomeUnknown              Outcome = "unknown"
	OutcomeSuccess              Outcome = "success"
	OutcomeTurnLimitReached     Outcome = "turn_limit_reached"
	OutcomeToolLoopLimitReached Outcome = "tool_loop_limit_reached"
	OutcomeFailed               Outcome = "failed"
)

// Constraints bound a session's lifetime, per spec.md's SessionState.
type Constraints struct {
	MaxTurns            int
	MaxConsecutiveToolLoops int
	MaxContextTokens    int
}

// Stats accumulates per-session statistics.
type Stats struct {
	TurnsExecuted int
	TotalDuration time.Duration
	InputTokens   int
	OutputTokens  int
	CachedInput   int
}

// SideEffects accumulates artifacts a session has produced, surfaced to the
// UI collaborator at session end.
type SideEffects struct {
	CreatedArtifacts []string
	ModifiedFiles    []string
	ExecutedCommands []string
	Warnings         []string
}

// State is the session-task-owned conversation state. All mutation happens
// on the owning task; mu exists only to let read-only observers (e.g. a
// status-line renderer) take a consistent snapshot without racing the
// session task, never to allow concurrent writers.
type State struct {
	mu sync.RWMutex

	ID string

	// WorkingDirectory tracks cd-like state within the session, independent
	// of WorkspaceRoot: a terminal agent may navigate subdirectories without
	// changing the trust boundary the safety gateway checks against.
	WorkingDirectory string
	WorkspaceRoot    string

	messages     []providers.Message
	conversation []ConversationEntry // provider-specific content log

	Stats       Stats
	Constraints Constraints
	Outcome     Outcome
	SideEffects SideEffects

	ConsecutiveToolLoops int
	LastProcessedIndex   int

	finalized bool
}

// ConversationEntry is one entry in the provider-specific content log,
// mirroring a Message but allowed to carry a provider's own role vocabulary
// (including "function") and raw content parts so structured-content
// providers need no re-serialization.
type ConversationEntry struct {
	Role    string
	Content any
}

// New constructs an empty State under the given id and constraints.
func New(id string, c Constraints) *State {
	return &State{ID: id, Constraints: c, Outcome: OutcomeUnknown}
}

// Messages returns a snapshot copy of the provider-agnostic message log.
func (s *State) Messages() []providers.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]providers.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the message log length.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// AddUserMessage appends a User-role message.
func (s *State) AddUserMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, providers.Message{Role: providers.RoleUser, Text: text})
	s.conversation = append(s.conversation, ConversationEntry{Role: "user", Content: text})
}

// AddAssistantMessage appends an Assistant-role message carrying text,
// optional reasoning, and any tool-calls emitted in this turn.
func (s *State) AddAssistantMessage(text, reasoning string, calls []providers.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, providers.Message{
		Role:      providers.RoleAssistant,
		Text:      text,
		Reasoning: reasoning,
		ToolCalls: calls,
	})
	s.conversation = append(s.conversation, ConversationEntry{Role: "assistant", Content: map[string]any{
		"text": text, "tool_calls": calls,
	}})
	s.LastProcessedIndex = len(s.messages) - 1
}

// PushToolResult appends a Tool-role message carrying a successful result.
func (s *State) PushToolResult(callID, name, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, providers.Message{
		Role:       providers.RoleTool,
		Text:       payload,
		ToolCallID: callID,
	})
	s.conversation = append(s.conversation, ConversationEntry{Role: "function", Content: map[string]any{
		"name": name, "tool_call_id": callID, "content": payload,
	}})
}

// PushToolError appends a Tool-role message reporting a failed invocation,
// using the same shape as a successful result so the model sees a normal
// tool response rather than a protocol error.
func (s *State) PushToolError(callID, name string, err error) {
	s.PushToolResult(callID, name, "Tool failed: "+err.Error())
}

// Finalize sets the session's terminal outcome exactly once; subsequent
// calls are no-ops, matching "finalized exactly once" in spec.md.
func (s *State) Finalize(outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}
	s.Outcome = outcome
	s.finalized = true
}

// IsFinalized reports whether Finalize has already run.
func (s *State) IsFinalized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized
}
