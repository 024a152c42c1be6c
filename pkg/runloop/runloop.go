// Package runloop implements the Runloop Scheduler (C8): the outer session
// loop that owns SessionState's lifetime, drives the streaming controller
// turn by turn, routes tool-call batches through the safety gateway and
// executor, consults the pattern engine for loop/degradation termination,
// and trims the message log before a turn when the context budget is tight.
// The turn-iteration, token-budget, and trim-then-retry structure generalizes
// the teacher's pkg/tools/toolloop.go RunToolLoop, split here into an outer
// scheduler (this package) and a one-turn streaming driver (pkg/controller)
// to match spec.md's component boundary, which toolloop.go's single function
// does not draw.
package runloop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vtcode/vtcode/pkg/bus"
	"github.com/vtcode/vtcode/pkg/contextgather"
	"github.com/vtcode/vtcode/pkg/controller"
	"github.com/vtcode/vtcode/pkg/pattern"
	"github.com/vtcode/vtcode/pkg/providers"
	"github.com/vtcode/vtcode/pkg/safety"
	"github.com/vtcode/vtcode/pkg/session"
	"github.com/vtcode/vtcode/pkg/tools"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// Summarizer produces the "summary of earlier turns" system message prepended
// after a safe split, and the system prompt assembled for each turn. Both are
// collaborator concerns (they may call back into the LLM or a template
// engine); the runloop only calls them at the right moments.
type Summarizer interface {
	SystemPrompt(ctx context.Context, s *session.State) (string, error)
	SummarizeDropped(ctx context.Context, dropped []providers.Message) (string, error)
}

// ApprovalCollaborator resolves a NeedsApproval decision into approve/deny.
// When alwaysAllowSession is true the runloop marks the tool preapproved in
// the registry, which suppresses only that tool's next NeedsApproval
// decision; later calls are checked and prompted for again.
type ApprovalCollaborator interface {
	Decide(ctx context.Context, toolName string, args []byte, reason string) (approve bool, alwaysAllowSession bool)
}

// Config bundles the tunables spec.md's C8 section names.
type Config struct {
	MaxTurns            int
	MaxToolLoops        int
	ContextBudgetTokens int
	TrimThreshold       float64
	RetentionPercent    float64

	TurnDeadline time.Duration
}

// Scheduler owns one session's lifetime.
type Scheduler struct {
	Config Config

	Provider providers.LLMProvider
	Registry *tools.Registry
	Executor *tools.Executor
	Gateway  *safety.Gateway
	Pattern  *pattern.Engine
	Bus      *bus.Bus
	Approval ApprovalCollaborator
	Summary  Summarizer

	Model            string
	WorkingDirectory string
	WorkspaceRoot    string
	Shell            string
}

// Run drives the session to termination: user /quit is represented by ctx
// cancellation from the caller's input loop; all other termination causes
// (turn limit, tool-loop limit, unrecoverable error, the model finishing,
// steering Stop) are detected internally and set state.Outcome before
// returning. Context-budget pressure is handled only by pre-turn trimming:
// when no safe split exists the turn runs untrimmed, and no outcome is set
// for it.
func (s *Scheduler) Run(ctx context.Context, state *session.State, steering <-chan controller.SteerMessage) error {
	log := vtlog.For("runloop")

	for turn := 0; s.Config.MaxTurns <= 0 || turn < s.Config.MaxTurns; turn++ {
		if ctx.Err() != nil {
			state.Finalize(session.OutcomeUnknown)
			return ctx.Err()
		}

		s.maybeTrim(ctx, state)

		s.Gateway.StartTurn()
		turnID := uuid.NewString()

		req, err := s.assembleRequest(ctx, state)
		if err != nil {
			state.Finalize(session.OutcomeFailed)
			return err
		}

		result, err := controller.DriveTurn(ctx, s.Provider, req, state, steering, s.Bus, turnID, s.Config.TurnDeadline)
		if err != nil {
			log.Warn().Err(err).Msg("turn failed")
			s.Bus.Publish(bus.Event{Kind: bus.KindError, TurnID: turnID, Message: err.Error()})
			state.Finalize(session.OutcomeFailed)
			return err
		}
		if result.Cancelled {
			state.Finalize(session.OutcomeUnknown)
			return nil
		}

		if result.FinishReason != providers.FinishToolCalls {
			state.Finalize(session.OutcomeSuccess)
			return nil
		}

		if err := s.runToolBatch(ctx, state, lastAssistantToolCalls(state)); err != nil {
			state.Finalize(session.OutcomeFailed)
			return err
		}

		cls := s.Pattern.Classify()
		if cls == pattern.ClassLoop || cls == pattern.ClassDegradation {
			state.ConsecutiveToolLoops++
			if state.ConsecutiveToolLoops >= s.Config.MaxToolLoops {
				s.Bus.Publish(bus.Event{Kind: bus.KindError, TurnID: turnID, Message: "consecutive tool-call loop limit reached"})
				state.Finalize(session.OutcomeToolLoopLimitReached)
				return nil
			}
		} else {
			state.ConsecutiveToolLoops = 0
		}
		// loop: another turn immediately so the model can read tool outputs.
	}

	state.Finalize(session.OutcomeTurnLimitReached)
	return nil
}

func lastAssistantToolCalls(state *session.State) []providers.ToolCall {
	msgs := state.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == providers.RoleAssistant {
			return msgs[i].ToolCalls
		}
	}
	return nil
}

// runToolBatch executes tool calls in the model's emission order, routing
// each through the safety gateway first.
func (s *Scheduler) runToolBatch(ctx context.Context, state *session.State, calls []providers.ToolCall) error {
	log := vtlog.For("runloop")

	for _, call := range calls {
		decision := s.Gateway.CheckAndRecord(call.Name, call.Args, call.ID)

		if decision.Outcome == safety.NeedsApproval && s.Registry.ConsumePreapproval(call.Name) {
			decision.Outcome = safety.Allow
		}

		switch decision.Outcome {
		case safety.Deny:
			state.PushToolResult(call.ID, call.Name, fmt.Sprintf("Denied: %s", decision.Reason))
			s.Pattern.Record(pattern.Record{ToolName: call.Name, ArgsFingerprint: mustFingerprint(call.Args), Success: false, Timestamp: time.Now()})
			continue

		case safety.NeedsApproval:
			s.Bus.Publish(bus.Event{Kind: bus.KindApprovalRequested, ToolCallID: call.ID, ToolName: call.Name, ToolArgs: call.Args, ApprovalReason: decision.Reason})
			approve, always := s.Approval.Decide(ctx, call.Name, call.Args, decision.Reason)
			if always {
				s.Registry.MarkPreapproved(call.Name)
			}
			if !approve {
				state.PushToolResult(call.ID, call.Name, fmt.Sprintf("Approval denied: %s", decision.Reason))
				s.Pattern.Record(pattern.Record{ToolName: call.Name, ArgsFingerprint: mustFingerprint(call.Args), Success: false, Timestamp: time.Now()})
				continue
			}
			fallthrough

		case safety.Allow:
			start := time.Now()
			sc := tools.SessionContext{WorkingDirectory: s.WorkingDirectory, WorkspaceRoot: s.WorkspaceRoot, Shell: s.Shell}
			res, err := s.Executor.ExecuteTool(ctx, call.Name, call.Args, sc)
			duration := time.Since(start)
			if err != nil {
				state.PushToolError(call.ID, call.Name, err)
				log.Debug().Str("tool", call.Name).Dur("duration", duration).Err(err).Msg("tool call failed")
				continue
			}
			state.PushToolResult(call.ID, call.Name, res.LLMContent)
			s.Bus.Publish(bus.Event{Kind: bus.KindToolCallCompleted, ToolCallID: call.ID, ToolOK: res.Success, ToolSummary: res.LLMContent})
		}
	}
	return nil
}

func mustFingerprint(args []byte) string {
	fp, err := pattern.Fingerprint(args)
	if err != nil {
		return "unfingerprintable"
	}
	return fp
}

func (s *Scheduler) assembleRequest(ctx context.Context, state *session.State) (providers.Request, error) {
	prompt, err := s.Summary.SystemPrompt(ctx, state)
	if err != nil {
		return providers.Request{}, err
	}

	messages := append([]providers.Message{{Role: providers.RoleSystem, Text: prompt}}, state.Messages()...)

	defs := make([]providers.ToolDefinition, 0, len(s.Registry.ListTools()))
	for _, t := range s.Registry.ListTools() {
		defs = append(defs, providers.ToolDefinition{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()})
	}

	return providers.Request{
		Model:    s.Model,
		Messages: messages,
		Tools:    defs,
	}, nil
}

// maybeTrim implements spec.md's pre-turn trimming: once total tokens reach
// budget*trim_threshold, find a safe split yielding <= budget*retention%,
// drop the prefix, and prepend a synthesized summary.
func (s *Scheduler) maybeTrim(ctx context.Context, state *session.State) {
	if s.Config.ContextBudgetTokens <= 0 {
		return
	}
	budget := s.Config.ContextBudgetTokens
	threshold := s.Config.TrimThreshold
	if threshold <= 0 {
		threshold = 0.85
	}
	retention := s.Config.RetentionPercent
	if retention <= 0 {
		retention = 0.5
	}

	if state.TotalTokens() < int(float64(budget)*threshold) {
		return
	}

	preferred := positionForRetention(state, int(float64(budget)*retention))
	safe := state.FindSafeSplitPoint(preferred)
	if safe <= 0 {
		return
	}

	dropped := state.Messages()[:safe]
	summary, err := s.Summary.SummarizeDropped(ctx, dropped)
	if err != nil {
		summary = "Earlier turns were trimmed from context; a summary could not be generated."
	}
	state.TrimBefore(safe, summary)
}

// positionForRetention walks the message log from the tail backward,
// accumulating estimated tokens, and returns the index at which the
// remaining suffix first fits within retainTokens.
func positionForRetention(state *session.State, retainTokens int) int {
	msgs := state.Messages()
	acc := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		acc += session.EstimateTokens(msgs[i].Text)
		if acc > retainTokens {
			return i + 1
		}
	}
	return 0
}
