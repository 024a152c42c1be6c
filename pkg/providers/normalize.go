package providers

import "encoding/json"

// NormalizeToolCall ensures Args is valid JSON, defaulting to an empty object
// when a provider emits an empty or malformed arguments string. Mirrors the
// teacher's providers.NormalizeToolCall call site used before appending a
// tool call to an assistant message.
func NormalizeToolCall(tc ToolCall) ToolCall {
	if len(tc.Args) == 0 {
		tc.Args = json.RawMessage("{}")
		return tc
	}
	var probe any
	if err := json.Unmarshal(tc.Args, &probe); err != nil {
		tc.Args = json.RawMessage("{}")
	}
	return tc
}
