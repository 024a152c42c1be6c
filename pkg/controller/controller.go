// Package controller implements the Streaming Agent Controller (C7): it
// drives exactly one LLM turn, consuming a typed stream of events until a
// terminal event arrives, while polling a non-blocking steering channel
// between every event. The turn bookkeeping (duration recording, usage
// merge, single assistant-message append) generalizes the accounting the
// teacher's pkg/agent/loop.go runLLMIteration performs synchronously per
// call, rebuilt here as a genuine event-driven state machine since the
// teacher never streams.
package controller

import (
	"context"
	"time"

	"github.com/vtcode/vtcode/pkg/bus"
	"github.com/vtcode/vtcode/pkg/providers"
	"github.com/vtcode/vtcode/pkg/session"
	"github.com/vtcode/vtcode/pkg/vterr"
)

// SteerKind discriminates a SteerMessage.
type SteerKind int

const (
	SteerStop SteerKind = iota
	SteerPause
	SteerResume
	SteerInjectInput
)

// SteerMessage is one steering instruction polled between stream events.
type SteerMessage struct {
	Kind SteerKind
	Text string // populated for SteerInjectInput
}

// pausePollInterval matches spec.md's 100ms Pause/Resume poll cadence.
const pausePollInterval = 100 * time.Millisecond

// TurnResult is what DriveTurn returns once the stream reaches a terminal
// state.
type TurnResult struct {
	FinishReason providers.FinishReason
	Usage        providers.Usage
	Cancelled    bool
}

// DriveTurn issues a streaming request and consumes it to completion,
// emitting bus events and applying steering messages along the way. It
// mutates state exactly as spec.md's C7 section describes: one assistant
// message is pushed at the end, the provider-specific content log is
// mirrored, and TurnCompleted is emitted — unless the turn is cancelled, in
// which case no TurnCompleted event is emitted.
//
// deadline, if non-zero, bounds the whole turn; exceeding it returns a
// StreamTimeout error without emitting TurnCompleted.
func DriveTurn(ctx context.Context, provider providers.LLMProvider, req providers.Request, state *session.State, steering <-chan SteerMessage, b *bus.Bus, turnID string, deadline time.Duration) (TurnResult, error) {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	events, err := provider.Stream(ctx, req)
	if err != nil {
		return TurnResult{}, vterr.Wrap(vterr.KindProvider, "failed to start stream", err)
	}

	b.Publish(bus.Event{Kind: bus.KindTurnStarted, TurnID: turnID})

	var fullText, fullReasoning string
	var toolCalls []providers.ToolCall
	recorded := false
	start := time.Now()

	recordDuration := func() {
		if recorded {
			return
		}
		state.Stats.TotalDuration += time.Since(start)
		state.Stats.TurnsExecuted++
		recorded = true
	}

	for {
		if steered, cancelled := pollSteering(steering, b, turnID); cancelled {
			recordDuration()
			return TurnResult{Cancelled: true}, nil
		} else if steered != nil && steered.Kind == SteerInjectInput {
			state.AddUserMessage(steered.Text)
		}

		select {
		case <-ctx.Done():
			return TurnResult{}, vterr.New(vterr.KindStreamTimeout, "stream deadline exceeded")

		case ev, ok := <-events:
			if !ok {
				return TurnResult{}, vterr.New(vterr.KindStreamTimeout, "stream closed before completion")
			}
			switch ev.Kind {
			case providers.EventToken:
				fullText += ev.Delta
				b.Publish(bus.Event{Kind: bus.KindOutputDelta, TurnID: turnID, Delta: ev.Delta})

			case providers.EventReasoning:
				fullReasoning += ev.Delta
				b.Publish(bus.Event{Kind: bus.KindThinkingDelta, TurnID: turnID, Delta: ev.Delta})

			case providers.EventReasoningStage:
				b.Publish(bus.Event{Kind: bus.KindThinkingStage, TurnID: turnID, Stage: ev.Stage})

			case providers.EventCompleted:
				resp := ev.Response
				if resp == nil {
					resp = &providers.Response{}
				}
				toolCalls = resp.ToolCalls
				for _, tc := range toolCalls {
					b.Publish(bus.Event{Kind: bus.KindToolCallStarted, TurnID: turnID, ToolCallID: tc.ID, ToolName: tc.Name, ToolArgs: tc.Args})
				}

				recordDuration()
				state.Stats.InputTokens += resp.Usage.InputTokens
				state.Stats.OutputTokens += resp.Usage.OutputTokens
				state.Stats.CachedInput += resp.Usage.CachedInput

				text := resp.Text
				if text == "" {
					text = fullText
				}
				reasoning := resp.Reasoning
				if reasoning == "" {
					reasoning = fullReasoning
				}
				state.AddAssistantMessage(text, reasoning, toolCalls)

				b.Publish(bus.Event{
					Kind:         bus.KindTurnCompleted,
					TurnID:       turnID,
					FinishReason: string(resp.FinishReason),
					Usage: bus.Usage{
						Input:       resp.Usage.InputTokens,
						Output:      resp.Usage.OutputTokens,
						CachedInput: resp.Usage.CachedInput,
					},
				})

				return TurnResult{FinishReason: resp.FinishReason, Usage: resp.Usage}, nil
			}
		}
	}
}

// pollSteering drains at most one pending steering message without blocking,
// applying Pause's sleep-poll loop inline. It returns (nil, false) when
// nothing was pending, (msg, false) for InjectInput, and (nil, true) when
// Stop was observed (directly or after a Pause).
func pollSteering(steering <-chan SteerMessage, b *bus.Bus, turnID string) (*SteerMessage, bool) {
	select {
	case msg := <-steering:
		switch msg.Kind {
		case SteerStop:
			return nil, true
		case SteerPause:
			return nil, waitForResume(steering, b, turnID)
		case SteerInjectInput:
			m := msg
			return &m, false
		}
	default:
	}
	return nil, false
}

// waitForResume sleep-polls at 100ms for Resume or Stop while paused,
// emitting ThinkingStage("Paused")/("Resumed") around the wait.
func waitForResume(steering <-chan SteerMessage, b *bus.Bus, turnID string) bool {
	b.Publish(bus.Event{Kind: bus.KindThinkingStage, TurnID: turnID, Stage: "Paused"})
	ticker := time.NewTicker(pausePollInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-steering:
			switch msg.Kind {
			case SteerStop:
				return true
			case SteerResume:
				b.Publish(bus.Event{Kind: bus.KindThinkingStage, TurnID: turnID, Stage: "Resumed"})
				return false
			}
		case <-ticker.C:
		}
	}
}
