package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTool struct {
	calls       int
	fail        int // number of leading calls that fail before succeeding
	idempotent  bool
}

func (t *countingTool) Name() string           { return "counting" }
func (t *countingTool) Description() string    { return "" }
func (t *countingTool) Schema() json.RawMessage { return json.RawMessage(`{}`) }
func (t *countingTool) DefaultPolicy() Policy  { return Policy{Idempotent: t.idempotent} }

func (t *countingTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	t.calls++
	if t.calls <= t.fail {
		return "", errors.New("transient failure")
	}
	return "done", nil
}

type failingTool struct{}

func (failingTool) Name() string           { return "failing" }
func (failingTool) Description() string    { return "" }
func (failingTool) Schema() json.RawMessage { return json.RawMessage(`{}`) }
func (failingTool) DefaultPolicy() Policy  { return Policy{} }
func (failingTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	return "", errors.New("boom")
}

// failingDualTool implements DualTool directly so its error propagates as
// the executor's own execErr, exercising the KindToolExecutionFailed wrap
// path (a plain Tool's Execute error is instead folded into a failed, non-
// error Result by invoke()).
type failingDualTool struct{}

func (failingDualTool) Name() string           { return "failing_dual" }
func (failingDualTool) Description() string    { return "" }
func (failingDualTool) Schema() json.RawMessage { return json.RawMessage(`{}`) }
func (failingDualTool) DefaultPolicy() Policy  { return Policy{} }
func (failingDualTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	return "", errors.New("unused")
}
func (failingDualTool) ExecuteDual(ctx context.Context, sc SessionContext, args json.RawMessage) (Result, error) {
	return Result{}, errors.New("dual boom")
}

type memCache struct {
	data map[string]Result
}

func newMemCache() *memCache { return &memCache{data: make(map[string]Result)} }

func (c *memCache) Get(key string) (Result, bool) {
	r, ok := c.data[key]
	return r, ok
}

func (c *memCache) Put(key string, r Result) {
	c.data[key] = r
}

type memRecorder struct {
	records []ExecutionRecord
}

func (r *memRecorder) Record(rec ExecutionRecord) {
	r.records = append(r.records, rec)
}

func TestExecuteToolUnknownToolErrors(t *testing.T) {
	reg := NewRegistry()
	ex := NewExecutor(reg, nil, nil)
	_, err := ex.ExecuteTool(context.Background(), "nope", nil, SessionContext{})
	assert.Error(t, err)
}

func TestExecuteToolRecordsSuccess(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&countingTool{})
	rec := &memRecorder{}
	ex := NewExecutor(reg, rec, nil)

	res, err := ex.ExecuteTool(context.Background(), "counting", nil, SessionContext{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, rec.records, 1)
	assert.True(t, rec.records[0].Success)
}

func TestExecuteToolRetriesIdempotentToolUntilSuccess(t *testing.T) {
	reg := NewRegistry()
	tool := &countingTool{fail: 2, idempotent: true}
	reg.Register(tool)
	ex := NewExecutor(reg, nil, nil)
	ex.RetryBaseDelay = 0

	res, err := ex.ExecuteTool(context.Background(), "counting", nil, SessionContext{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, tool.calls)
}

func TestExecuteToolNonIdempotentDoesNotRetry(t *testing.T) {
	reg := NewRegistry()
	tool := &countingTool{fail: 1}
	reg.Register(tool)
	ex := NewExecutor(reg, nil, nil)

	res, _ := ex.ExecuteTool(context.Background(), "counting", nil, SessionContext{})
	assert.False(t, res.Success)
	assert.Equal(t, 1, tool.calls)
}

func TestExecuteToolCachesSuccessfulResult(t *testing.T) {
	reg := NewRegistry()
	tool := &countingTool{}
	reg.Register(tool)
	cache := newMemCache()
	ex := NewExecutor(reg, nil, cache)

	_, err := ex.ExecuteTool(context.Background(), "counting", json.RawMessage(`{"x":1}`), SessionContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, tool.calls)

	res, err := ex.ExecuteTool(context.Background(), "counting", json.RawMessage(`{"x":1}`), SessionContext{})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 1, tool.calls, "second call should be served from cache, not re-invoke the tool")
}

func TestExecuteToolPlainToolErrorYieldsFailedResultNotExecutorError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(failingTool{})
	ex := NewExecutor(reg, nil, nil)

	res, err := ex.ExecuteTool(context.Background(), "failing", nil, SessionContext{})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestExecuteToolWrapsDualToolExecutionError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(failingDualTool{})
	ex := NewExecutor(reg, nil, nil)

	_, err := ex.ExecuteTool(context.Background(), "failing_dual", nil, SessionContext{})
	assert.Error(t, err)
}
