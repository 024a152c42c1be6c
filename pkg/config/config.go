// Package config holds the typed configuration records for the agent core,
// their defaults, their loading from a TOML file plus env overrides (Load),
// and runtime path resolution (ResolveRuntimePaths). CLI flags are handled
// by cmd/vtcode. The record shape matches the teacher's
// pkg/config/config.go (struct tags for both toml and env binding).
package config

import "time"

// GatewayConfig configures the Safety Gateway (C3).
type GatewayConfig struct {
	MaxPerTurn            int  `toml:"max_per_turn" env:"VTCODE_SAFETY_MAX_PER_TURN" envDefault:"20"`
	MaxPerSession         int  `toml:"max_per_session" env:"VTCODE_SAFETY_MAX_PER_SESSION" envDefault:"500"`
	RateLimitPerSecond    int  `toml:"rate_limit_per_second" env:"VTCODE_SAFETY_RATE_PER_SECOND" envDefault:"5"`
	RateLimitPerMinute    int  `toml:"rate_limit_per_minute" env:"VTCODE_SAFETY_RATE_PER_MINUTE" envDefault:"0"`
	EnforceRateLimit      bool `toml:"enforce_rate_limit" env:"VTCODE_SAFETY_ENFORCE_RATE_LIMIT" envDefault:"false"`
	ApprovalRiskThreshold string `toml:"approval_risk_threshold" env:"VTCODE_SAFETY_APPROVAL_RISK_THRESHOLD" envDefault:"medium"`
	WorkspaceTrusted      bool `toml:"workspace_trusted" env:"VTCODE_SAFETY_WORKSPACE_TRUSTED" envDefault:"false"`
	ApprovalBypassed      bool `toml:"approval_bypassed" env:"VTCODE_SAFETY_APPROVAL_BYPASSED" envDefault:"false"`
}

// RunloopConfig configures the Runloop Scheduler (C8).
type RunloopConfig struct {
	MaxTurns             int     `toml:"max_turns" env:"VTCODE_RUNLOOP_MAX_TURNS" envDefault:"200"`
	MaxToolLoops         int     `toml:"max_tool_loops" env:"VTCODE_RUNLOOP_MAX_TOOL_LOOPS" envDefault:"3"`
	ContextBudgetTokens  int     `toml:"context_budget_tokens" env:"VTCODE_RUNLOOP_CONTEXT_BUDGET" envDefault:"128000"`
	TrimThreshold        float64 `toml:"trim_threshold" env:"VTCODE_RUNLOOP_TRIM_THRESHOLD" envDefault:"0.85"`
	RetentionPercent     float64 `toml:"retention_percent" env:"VTCODE_RUNLOOP_RETENTION_PERCENT" envDefault:"0.5"`
}

// CacheConfig configures the Dynamic Model & Artifact Cache (C5).
type CacheConfig struct {
	TTL          time.Duration `toml:"ttl" env:"VTCODE_CACHE_TTL" envDefault:"300s"`
	MaxEntries   int           `toml:"max_entries" env:"VTCODE_CACHE_MAX_ENTRIES" envDefault:"256"`
	SnapshotPath string        `toml:"snapshot_path" env:"VTCODE_CACHE_SNAPSHOT_PATH"`
}

// ProcessConfig configures the Process Supervisor (C1).
type ProcessConfig struct {
	DefaultTimeout    time.Duration `toml:"default_timeout" env:"VTCODE_PROCESS_TIMEOUT" envDefault:"2m"`
	QuietPeriod       time.Duration `toml:"quiet_period" env:"VTCODE_PROCESS_QUIET_PERIOD" envDefault:"500ms"`
	WriterCapacity    int           `toml:"writer_capacity" env:"VTCODE_PROCESS_WRITER_CAPACITY" envDefault:"128"`
	BroadcastCapacity int           `toml:"broadcast_capacity" env:"VTCODE_PROCESS_BROADCAST_CAPACITY" envDefault:"256"`
}

// PatternConfig records the Pattern / Effectiveness Engine (C9) tunables.
// pattern.New does not take it: the engine uses its own package constants,
// which have the same values as these defaults.
type PatternConfig struct {
	RingBufferSize  int     `toml:"ring_buffer_size" env:"VTCODE_PATTERN_RING_BUFFER_SIZE" envDefault:"100"`
	SequenceWindow  int     `toml:"sequence_window" env:"VTCODE_PATTERN_SEQUENCE_WINDOW" envDefault:"10"`
	QualityStep     float64 `toml:"quality_step" env:"VTCODE_PATTERN_QUALITY_STEP" envDefault:"0.05"`
	NearLoopSimilarity float64 `toml:"near_loop_similarity" env:"VTCODE_PATTERN_NEAR_LOOP_SIMILARITY" envDefault:"0.85"`
	ConvergenceVariance float64 `toml:"convergence_variance" env:"VTCODE_PATTERN_CONVERGENCE_VARIANCE" envDefault:"0.15"`
	DecayLambda     float64 `toml:"decay_lambda" env:"VTCODE_PATTERN_DECAY_LAMBDA" envDefault:"0.1"`
	ReliableMinUses int     `toml:"reliable_min_uses" env:"VTCODE_PATTERN_RELIABLE_MIN_USES" envDefault:"3"`
	ReliableMinSuccessRate float64 `toml:"reliable_min_success_rate" env:"VTCODE_PATTERN_RELIABLE_MIN_SUCCESS_RATE" envDefault:"0.7"`
}

// ContextGatherConfig configures the Context Gatherer (C10).
type ContextGatherConfig struct {
	MaxContextFiles     int `toml:"max_context_files" env:"VTCODE_CTXGATHER_MAX_FILES" envDefault:"3"`
	MaxSnippetsPerFile  int `toml:"max_snippets_per_file" env:"VTCODE_CTXGATHER_MAX_SNIPPETS_PER_FILE" envDefault:"20"`
	MaxContextTokens    int `toml:"max_context_tokens" env:"VTCODE_CTXGATHER_MAX_TOKENS" envDefault:"2000"`
	SnippetPadLines     int `toml:"snippet_pad_lines" env:"VTCODE_CTXGATHER_PAD_LINES" envDefault:"10"`
}

// MCPServerSpec names one MCP server to bridge tools from. It mirrors
// tools.MCPServerConfig; cmd/vtcode converts between the two so pkg/config
// does not need to import pkg/tools.
type MCPServerSpec struct {
	Name    string            `toml:"name"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
}

// MCPConfig configures the MCP tool bridge consumed by the Tool Executor &
// Registry (C4).
type MCPConfig struct {
	Servers []MCPServerSpec `toml:"servers"`
}

// WebUIConfig configures the optional websocket collaborator sink (part of
// C11's Event Bus) that mirrors events to a remote UI.
type WebUIConfig struct {
	ListenAddr string `toml:"listen_addr" env:"VTCODE_WEBUI_LISTEN_ADDR"`
}

// Config is the top-level configuration record assembled by a collaborator
// (TOML file + env overrides) before constructing the runloop.
type Config struct {
	Gateway       GatewayConfig       `toml:"safety"`
	Runloop       RunloopConfig       `toml:"runloop"`
	Cache         CacheConfig         `toml:"cache"`
	Process       ProcessConfig       `toml:"process"`
	Pattern       PatternConfig       `toml:"pattern"`
	ContextGather ContextGatherConfig `toml:"context_gather"`
	MCP           MCPConfig           `toml:"mcp"`
	WebUI         WebUIConfig         `toml:"web_ui"`
}

// Default returns a Config populated with the documented defaults, used when
// no TOML file or env vars are present.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			MaxPerTurn:            20,
			MaxPerSession:         500,
			RateLimitPerSecond:    5,
			EnforceRateLimit:      false,
			ApprovalRiskThreshold: "medium",
		},
		Runloop: RunloopConfig{
			MaxTurns:            200,
			MaxToolLoops:        3,
			ContextBudgetTokens: 128000,
			TrimThreshold:       0.85,
			RetentionPercent:    0.5,
		},
		Cache: CacheConfig{
			TTL:        300 * time.Second,
			MaxEntries: 256,
		},
		Process: ProcessConfig{
			DefaultTimeout:    2 * time.Minute,
			QuietPeriod:       500 * time.Millisecond,
			WriterCapacity:    128,
			BroadcastCapacity: 256,
		},
		Pattern: PatternConfig{
			RingBufferSize:         100,
			SequenceWindow:         10,
			QualityStep:            0.05,
			NearLoopSimilarity:     0.85,
			ConvergenceVariance:    0.15,
			DecayLambda:            0.1,
			ReliableMinUses:        3,
			ReliableMinSuccessRate: 0.7,
		},
		ContextGather: ContextGatherConfig{
			MaxContextFiles:    3,
			MaxSnippetsPerFile: 20,
			MaxContextTokens:   2000,
			SnippetPadLines:    10,
		},
	}
}
