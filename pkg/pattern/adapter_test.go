package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vtcode/vtcode/pkg/tools"
)

func TestExecutorRecorderForwardsFieldsIntoEngine(t *testing.T) {
	engine := New()
	recorder := ExecutorRecorder{Engine: engine}

	now := time.Now()
	recorder.Record(tools.ExecutionRecord{
		ToolName:        "shell",
		ArgsFingerprint: "fp1",
		Success:         true,
		QualityScore:    0.8,
		Duration:        2 * time.Second,
		Timestamp:       now,
	})

	eff := engine.EffectivenessOf("shell", now.Add(time.Minute))
	assert.Equal(t, 1, eff.Uses)
	assert.Equal(t, 1.0, eff.SuccessRate)
}
