package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vtcode/vtcode/pkg/canonjson"
	"github.com/vtcode/vtcode/pkg/vterr"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// ExecutionRecord is what the executor reports to the pattern engine (C9)
// after every invocation, win or lose.
type ExecutionRecord struct {
	ToolName        string
	ArgsFingerprint string
	Success         bool
	QualityScore    float64
	Duration        time.Duration
	Timestamp       time.Time
}

// ExecutionRecorder receives one ExecutionRecord per tool invocation. The
// pattern engine implements this; the executor takes it as an interface so
// pkg/tools never imports pkg/pattern.
type ExecutionRecorder interface {
	Record(rec ExecutionRecord)
}

// ResultCache is the subset of the Dynamic Model & Artifact Cache (C5) the
// executor's caching middleware needs: a get/put over opaque string keys.
type ResultCache interface {
	Get(key string) (Result, bool)
	Put(key string, r Result)
}

// Executor wraps Registry lookups with the logging, caching, and retry
// middleware spec.md's C4 section requires.
type Executor struct {
	Registry *Registry
	Recorder ExecutionRecorder
	Cache    ResultCache

	MaxRetryAttempts int
	RetryBaseDelay   time.Duration
	PerTryTimeout    time.Duration
}

// NewExecutor constructs an Executor with the documented retry defaults.
func NewExecutor(reg *Registry, recorder ExecutionRecorder, cache ResultCache) *Executor {
	return &Executor{
		Registry:         reg,
		Recorder:         recorder,
		Cache:            cache,
		MaxRetryAttempts: 3,
		RetryBaseDelay:   200 * time.Millisecond,
		PerTryTimeout:    30 * time.Second,
	}
}

// ExecuteTool looks up name, runs it with sc under middleware, records an
// ExecutionRecord, and returns the dual-channel Result. An absent tool is a
// ToolNotFound error and is not recorded (there is no execution to record).
func (e *Executor) ExecuteTool(ctx context.Context, name string, args json.RawMessage, sc SessionContext) (Result, error) {
	t, err := e.Registry.Get(name)
	if err != nil {
		return Result{}, err
	}

	log := vtlog.For("tools.executor")
	start := time.Now()

	key, keyErr := CacheKey(name, args)
	if keyErr == nil && e.Cache != nil {
		if cached, ok := e.Cache.Get(key); ok {
			cached.FromCache = true
			log.Debug().Str("tool", name).Msg("served from cache")
			e.record(name, args, cached.Success, time.Since(start))
			return cached, nil
		}
	}

	policy := t.DefaultPolicy()
	var result Result
	var execErr error

	attempts := 1
	if policy.Idempotent {
		attempts = e.MaxRetryAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		tryCtx := ctx
		var cancel context.CancelFunc
		if e.PerTryTimeout > 0 {
			tryCtx, cancel = context.WithTimeout(ctx, e.PerTryTimeout)
		}
		result, execErr = e.invoke(tryCtx, t, sc, args)
		if cancel != nil {
			cancel()
		}
		if execErr == nil && result.Success {
			break
		}
		if attempt < attempts {
			log.Debug().Str("tool", name).Int("attempt", attempt).Msg("retrying idempotent tool")
			time.Sleep(e.RetryBaseDelay * time.Duration(1<<uint(attempt-1)))
		}
	}

	duration := time.Since(start)
	log.Info().Str("tool", name).Dur("duration", duration).Bool("success", result.Success).Msg("tool executed")

	if execErr == nil && result.Success && keyErr == nil && e.Cache != nil {
		e.Cache.Put(key, result)
	}

	e.record(name, args, result.Success, duration)

	if execErr != nil {
		return Result{}, vterr.Wrap(vterr.KindToolExecutionFailed, "tool execution failed", execErr)
	}
	return result, nil
}

func (e *Executor) record(name string, args json.RawMessage, success bool, dur time.Duration) {
	if e.Recorder == nil {
		return
	}
	// The pattern engine's NearLoop classifier runs Jaro-Winkler similarity
	// over this fingerprint, so it must stay the canonical JSON string
	// itself, not a hash of it (hashing destroys the edit-distance
	// structure similarity needs; CacheKey's digest is right for exact-match
	// cache lookups but wrong here).
	fp, err := canonjson.Marshal(args)
	if err != nil {
		fp = name
	}
	quality := 0.0
	if success {
		quality = 1.0
	}
	e.Recorder.Record(ExecutionRecord{
		ToolName:        name,
		ArgsFingerprint: fp,
		Success:         success,
		QualityScore:    quality,
		Duration:        dur,
		Timestamp:       time.Now(),
	})
}

func (e *Executor) invoke(ctx context.Context, t Tool, sc SessionContext, args json.RawMessage) (Result, error) {
	if dt, ok := t.(DualTool); ok {
		return dt.ExecuteDual(ctx, sc, args)
	}
	out, err := t.Execute(ctx, sc, args)
	if err != nil {
		return ErrorResult(t.Name(), err.Error()), nil
	}
	return Mirror(t.Name(), out), nil
}

// HasTool delegates to Registry.
func (e *Executor) HasTool(name string) bool { return e.Registry.HasTool(name) }

// ListTools delegates to Registry.
func (e *Executor) ListTools() []Tool { return e.Registry.ListTools() }
