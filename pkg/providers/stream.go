package providers

import "context"

// CollectStream drains a Stream to its terminal Completed event, concatenating
// Token and Reasoning deltas along the way. It is a convenience for adapters
// that only implement Stream natively and want to synthesize Complete from
// it, or for tests that want a synchronous result.
func CollectStream(ctx context.Context, events <-chan Event) (*Response, error) {
	var text, reasoning string
	for {
		select {
		case <-ctx.Done():
			return nil, StreamTimeoutError("stream cancelled before completion")
		case ev, ok := <-events:
			if !ok {
				return nil, StreamTimeoutError("stream closed before completion")
			}
			switch ev.Kind {
			case EventToken:
				text += ev.Delta
			case EventReasoning:
				reasoning += ev.Delta
			case EventReasoningStage:
				// no accumulation; stage transitions are observational only
			case EventCompleted:
				resp := ev.Response
				if resp == nil {
					resp = &Response{}
				}
				if resp.Text == "" {
					resp.Text = text
				}
				if resp.Reasoning == "" {
					resp.Reasoning = reasoning
				}
				return resp, nil
			}
		}
	}
}
