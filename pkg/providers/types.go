// Package providers defines the provider-agnostic message, tool-call, and
// streaming-event types shared across the agent core. No provider wire
// format appears here; concrete adapters translate at request time, matching
// the teacher's pkg/providers/types.go split between a core LLMProvider
// interface and adapter-owned request/response shapes.
package providers

import (
	"context"
	"encoding/json"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartType discriminates a Part within a Message's Parts slice.
type PartType string

const (
	PartText         PartType = "text"
	PartToolCall     PartType = "tool_call"
	PartToolResponse PartType = "tool_response"
	PartReasoning    PartType = "reasoning"
)

// Part is one element of a Message's structured content. Exactly the fields
// relevant to Type are populated; the others are zero.
type Part struct {
	Type PartType `json:"type"`

	Text string `json:"text,omitempty"`

	ToolCall *ToolCall `json:"tool_call,omitempty"`

	ToolCallID  string `json:"tool_call_id,omitempty"`
	ToolContent string `json:"tool_content,omitempty"`

	Reasoning string `json:"reasoning,omitempty"`
}

// ToolCall is emitted by the Assistant and consumed exactly once by the
// executor. Args is held as a raw JSON value so arbitrary tool parameter
// shapes round-trip without a schema dependency in this package.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Message is one entry in the provider-agnostic log. Content is either plain
// Text or an ordered Parts sequence; exactly one of the two is populated.
//
// Invariant: every Tool-role message carries a ToolCallID that references an
// earlier Assistant message's ToolCall with the same id. No orphan Tool
// messages may exist in any prefix of the log (see session.Normalize).
type Message struct {
	Role Role

	Text  string
	Parts []Part

	// ToolCalls is populated only on Assistant messages that triggered tool
	// invocations in the same turn.
	ToolCalls []ToolCall

	// ToolCallID is populated only on Tool messages, referencing the
	// ToolCall.ID it answers.
	ToolCallID string

	// Reasoning carries provider reasoning/thinking text, when the provider
	// exposes it, for Assistant messages.
	Reasoning string
}

// HasParts reports whether the message uses structured Parts rather than
// plain Text.
func (m Message) HasParts() bool { return len(m.Parts) > 0 }

// Usage reports token accounting for a single LLM turn.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedInput  int `json:"cached_input"`
}

// FinishReason classifies why an LLM turn stopped producing tokens.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
	FinishTruncated FinishReason = "truncated"
)

// Response is the full result of one non-streaming or completed-streaming
// LLM turn.
type Response struct {
	Text         string
	Reasoning    string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        Usage
}

// Request carries everything needed to start an LLM turn. Model identifies
// which model/deployment to target; Hints carries optional provider-specific
// knobs (reasoning-effort, verbosity) that adapters may ignore.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
	MaxTokens   int
	Hints       map[string]string
}

// ToolDefinition is the provider-facing descriptor for one registered tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// EventKind discriminates a streaming Event.
type EventKind string

const (
	EventToken          EventKind = "token"
	EventReasoning      EventKind = "reasoning"
	EventReasoningStage EventKind = "reasoning_stage"
	EventCompleted      EventKind = "completed"
)

// Event is one item from an LLM stream. Exactly the fields relevant to Kind
// are populated.
type Event struct {
	Kind EventKind

	Delta string // for Token / Reasoning

	Stage string // for ReasoningStage

	Response *Response // for Completed
}

// LLMProvider is the provider-agnostic client interface. Complete performs a
// single non-streaming turn; Stream returns a channel of Events terminated by
// exactly one EventCompleted event (or a closed channel on context
// cancellation/error, in which case the caller observes the returned error).
type LLMProvider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Stream(ctx context.Context, req Request) (<-chan Event, error)
	DefaultModel() string
}
