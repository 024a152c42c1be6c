// Package safety implements the Safety Gateway (C3): the single source of
// truth for whether a tool call may run, generalizing the teacher's
// pkg/agent/ratelimit.go and pkg/tools/ratelimit.go sliding-window counters
// into the full decision-order algorithm spec.md describes, backed by
// golang.org/x/time/rate token buckets instead of the teacher's hand-rolled
// rateBucket.
package safety

import (
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RiskLevel classifies how dangerous a tool invocation is judged to be.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// Outcome discriminates a Decision.
type Outcome int

const (
	Allow Outcome = iota
	NeedsApproval
	Deny
)

// Decision is the Safety Gateway's verdict for one tool invocation.
type Decision struct {
	Outcome          Outcome
	Reason           string
	RiskLevel        RiskLevel
	ToolInvocationID string
}

// IntentClassifier examines a tool's arguments and reports whether this
// specific invocation is destructive, independent of the tool's name (e.g. a
// generic "fs" tool with op:"delete").
type IntentClassifier func(toolName string, args json.RawMessage) bool

// WorkspaceTrust mirrors spec.md's workspace-trust tiers used in the
// approval-threshold comparison.
type WorkspaceTrust int

const (
	TrustUntrusted WorkspaceTrust = iota
	TrustPartial
	TrustTrusted
)

// Config configures one Gateway instance.
type Config struct {
	MaxPerTurn         int
	MaxPerSession      int
	RateLimitPerSecond int
	RateLimitPerMinute int // 0 disables the per-minute cap
	EnforceRateLimit   bool

	ApprovalRiskThreshold RiskLevel
	ApprovalBypassed      bool
	WorkspaceTrust        WorkspaceTrust

	DestructiveToolNames map[string]struct{}
	Classify             IntentClassifier
}

// Gateway is the Safety Gateway. All counters and limiters are guarded by mu;
// writers never block on I/O while holding it.
type Gateway struct {
	cfg Config

	mu              sync.Mutex
	perTurnCounter  int
	perSessionCounter int

	perSecond *rate.Limiter
	perMinute *rate.Limiter
}

// New constructs a Gateway from cfg.
func New(cfg Config) *Gateway {
	g := &Gateway{cfg: cfg}
	if cfg.RateLimitPerSecond > 0 {
		g.perSecond = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond)
	}
	if cfg.RateLimitPerMinute > 0 {
		g.perMinute = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMinute)/60.0), cfg.RateLimitPerMinute)
	}
	return g
}

// StartTurn resets the per-turn counter at the beginning of a new turn.
func (g *Gateway) StartTurn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.perTurnCounter = 0
}

// CheckAndRecord evaluates the six-step decision order for one tool call and,
// for Allow/NeedsApproval outcomes only, records it against the turn/session
// counters. Denies never count toward budgets.
func (g *Gateway) CheckAndRecord(toolName string, args json.RawMessage, invocationID string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.perTurnCounter >= g.cfg.MaxPerTurn {
		return Decision{Outcome: Deny, Reason: fmt.Sprintf("turn limit reached (max %d)", g.cfg.MaxPerTurn), RiskLevel: RiskLow, ToolInvocationID: invocationID}
	}
	if g.perSessionCounter >= g.cfg.MaxPerSession {
		return Decision{Outcome: Deny, Reason: fmt.Sprintf("session limit reached (max %d)", g.cfg.MaxPerSession), RiskLevel: RiskLow, ToolInvocationID: invocationID}
	}
	if g.cfg.EnforceRateLimit && g.perSecond != nil && !g.perSecond.Allow() {
		return Decision{Outcome: Deny, Reason: fmt.Sprintf("rate limit exceeded (max %d/second)", g.cfg.RateLimitPerSecond), RiskLevel: RiskLow, ToolInvocationID: invocationID}
	}
	if g.cfg.RateLimitPerMinute > 0 && g.perMinute != nil && !g.perMinute.Allow() {
		return Decision{Outcome: Deny, Reason: fmt.Sprintf("rate limit exceeded (max %d/minute)", g.cfg.RateLimitPerMinute), RiskLevel: RiskLow, ToolInvocationID: invocationID}
	}

	risk := g.classifyRisk(toolName, args)
	destructive := g.isDestructive(toolName, args)
	if destructive && !g.cfg.ApprovalBypassed && g.cfg.WorkspaceTrust < TrustTrusted && risk >= g.cfg.ApprovalRiskThreshold {
		g.perTurnCounter++
		g.perSessionCounter++
		return Decision{
			Outcome:          NeedsApproval,
			Reason:           fmt.Sprintf("destructive call to %q requires approval", toolName),
			RiskLevel:        risk,
			ToolInvocationID: invocationID,
		}
	}

	g.perTurnCounter++
	g.perSessionCounter++
	return Decision{Outcome: Allow, RiskLevel: risk, ToolInvocationID: invocationID}
}

func (g *Gateway) isDestructive(toolName string, args json.RawMessage) bool {
	if g.cfg.DestructiveToolNames != nil {
		if _, ok := g.cfg.DestructiveToolNames[toolName]; ok {
			return true
		}
	}
	if g.cfg.Classify != nil {
		return g.cfg.Classify(toolName, args)
	}
	return false
}

func (g *Gateway) classifyRisk(toolName string, args json.RawMessage) RiskLevel {
	if g.isDestructive(toolName, args) {
		return RiskMedium
	}
	return RiskLow
}
