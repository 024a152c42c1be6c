// Package bus implements the unified typed event stream described in
// spec.md's Event Bus component. It generalizes the teacher's
// pkg/agent/events.go AgentEventType enum (ThinkingStarted, ToolCallStarted,
// ToolCallCompleted, ResponseComplete, Error) into the richer per-turn event
// set the runloop and controller emit, and keeps the teacher's
// single-listener, never-block publish discipline.
package bus

import (
	"encoding/json"
	"sync"

	"github.com/vtcode/vtcode/pkg/vtlog"
)

// Kind discriminates an Event.
type Kind string

const (
	KindTurnStarted       Kind = "turn_started"
	KindOutputDelta       Kind = "output_delta"
	KindThinkingDelta     Kind = "thinking_delta"
	KindThinkingStage     Kind = "thinking_stage"
	KindToolCallStarted   Kind = "tool_call_started"
	KindToolCallCompleted Kind = "tool_call_completed"
	KindApprovalRequested Kind = "approval_requested"
	KindTurnCompleted     Kind = "turn_completed"
	KindError             Kind = "error"
)

// Usage mirrors providers.Usage without importing it, keeping this package a
// leaf the way the teacher's events.go has no dependency on pkg/providers.
type Usage struct {
	Input       int `json:"input"`
	Output      int `json:"output"`
	CachedInput int `json:"cached_input"`
}

// Event is the single unified event type published on the bus. Exactly the
// fields relevant to Kind are populated, matching the teacher's
// AgentEvent{Type, Data any} shape generalized into one flat struct so JSON
// sinks (the websocket UI collaborator) can serialize it uniformly.
type Event struct {
	Kind Kind `json:"kind"`

	TurnID string `json:"turn_id,omitempty"`

	Delta string `json:"delta,omitempty"`
	Stage string `json:"stage,omitempty"`

	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	ToolArgs   json.RawMessage `json:"tool_args,omitempty"`
	ToolOK     bool            `json:"tool_ok,omitempty"`
	ToolSummary string         `json:"tool_summary,omitempty"`

	ApprovalReason string `json:"approval_reason,omitempty"`

	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`

	Message string `json:"message,omitempty"`
}

// Sink receives published Events. Implementations must not block; the bus
// treats a full sink as droppable.
type Sink interface {
	Publish(Event)
}

// Bus fans out Events to exactly one subscriber, matching spec.md's "exactly
// one subscriber (the UI collaborator) is supported initially; the
// controller never blocks on the bus". Publish is always non-blocking: a
// full subscriber channel causes the event to be dropped with a warning log,
// never a stall of the calling turn.
type Bus struct {
	mu  sync.RWMutex
	out chan Event
}

// capacity is generous enough that a live UI collaborator never backs up
// under normal token-delta rates; it exists only to bound memory if nobody
// is reading.
const capacity = 1024

// New constructs a Bus with no subscriber attached yet.
func New() *Bus {
	return &Bus{}
}

// Subscribe attaches the single allowed subscriber and returns its receive
// channel. Calling Subscribe again replaces the previous subscriber; the old
// channel is closed.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out != nil {
		close(b.out)
	}
	b.out = make(chan Event, capacity)
	return b.out
}

// Publish fans an Event out to the current subscriber, if any, without
// blocking the caller.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	out := b.out
	b.mu.RUnlock()
	if out == nil {
		return
	}
	select {
	case out <- ev:
	default:
		vtlog.For("bus").Warn().
			Str("kind", string(ev.Kind)).
			Msg("event dropped: subscriber channel full")
	}
}
