// Package nullprovider implements a stand-in providers.LLMProvider used by
// cmd/vtcode when no real provider adapter is configured. Concrete provider
// HTTP bindings (Anthropic, OpenAI, Bedrock) are explicitly out of this
// module's scope; pkg/providers only specifies the interface they would
// implement behind. nullprovider gives the CLI something to drive end to end
// without a network call: it echoes the last user message back as a
// completed turn, streamed one word at a time so the controller's
// token-by-token path is exercised the same way a real adapter would.
package nullprovider

import (
	"context"
	"strings"

	"github.com/vtcode/vtcode/pkg/providers"
)

// Provider is the stand-in LLMProvider.
type Provider struct {
	Model string
}

// New constructs a Provider reporting model as its default model name.
func New(model string) *Provider {
	if model == "" {
		model = "null-echo"
	}
	return &Provider{Model: model}
}

func (p *Provider) DefaultModel() string { return p.Model }

func (p *Provider) Complete(ctx context.Context, req providers.Request) (*providers.Response, error) {
	text := replyFor(req)
	return &providers.Response{
		Text:         text,
		FinishReason: providers.FinishStop,
		Usage:        usageFor(req, text),
	}, nil
}

func (p *Provider) Stream(ctx context.Context, req providers.Request) (<-chan providers.Event, error) {
	out := make(chan providers.Event, 8)
	text := replyFor(req)

	go func() {
		defer close(out)
		words := strings.Fields(text)
		for i, w := range words {
			delta := w
			if i < len(words)-1 {
				delta += " "
			}
			select {
			case out <- providers.Event{Kind: providers.EventToken, Delta: delta}:
			case <-ctx.Done():
				return
			}
		}
		out <- providers.Event{
			Kind: providers.EventCompleted,
			Response: &providers.Response{
				Text:         text,
				FinishReason: providers.FinishStop,
				Usage:        usageFor(req, text),
			},
		}
	}()

	return out, nil
}

func replyFor(req providers.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == providers.RoleUser {
			return "echo: " + req.Messages[i].Text
		}
	}
	return "(no user message to echo)"
}

func usageFor(req providers.Request, text string) providers.Usage {
	in := 0
	for _, m := range req.Messages {
		in += len(m.Text) / 4
	}
	return providers.Usage{InputTokens: in, OutputTokens: len(text) / 4}
}
