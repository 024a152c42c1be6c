package pattern

import "github.com/vtcode/vtcode/pkg/tools"

// ExecutorRecorder adapts an Engine to tools.ExecutionRecorder, converting
// the executor's ExecutionRecord into this package's own Record type so
// pkg/tools and pkg/pattern stay decoupled (pkg/tools never imports
// pkg/pattern).
type ExecutorRecorder struct {
	Engine *Engine
}

func (r ExecutorRecorder) Record(rec tools.ExecutionRecord) {
	r.Engine.Record(Record{
		ToolName:        rec.ToolName,
		ArgsFingerprint: rec.ArgsFingerprint,
		Success:         rec.Success,
		QualityScore:    rec.QualityScore,
		Duration:        rec.Duration,
		Timestamp:       rec.Timestamp,
	})
}
