package plugin

import (
	"context"

	"github.com/google/uuid"

	"ola/llm"
)

// Provider adapts a ModelProvider to llm.Provider. Plugins answer in one
// piece, so streaming delivers the whole reply as a single chunk.
type Provider struct {
	impl ModelProvider
}

func NewProvider(impl ModelProvider) *Provider {
	return &Provider{impl: impl}
}

func (p *Provider) Configure(settings map[string]string) error {
	return p.impl.Configure(settings)
}

func (p *Provider) complete(ctx context.Context, req *llm.ChatRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs := make([]Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	return p.impl.Complete(CompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
}

func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := p.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		ID:           uuid.New().String(),
		Content:      resp.Content,
		FinishReason: "stop",
		Usage:        llm.Usage{InputTokens: resp.InputTokens, OutputTokens: resp.OutputTokens},
	}, nil
}

func (p *Provider) ChatStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	chunks := make(chan llm.StreamChunk, 2)

	go func() {
		defer close(chunks)
		resp, err := p.complete(ctx, req)
		if err != nil {
			chunks <- llm.StreamChunk{Error: err, Done: true}
			return
		}
		chunks <- llm.StreamChunk{Content: resp.Content}
		chunks <- llm.StreamChunk{
			Done:  true,
			Usage: &llm.Usage{InputTokens: resp.InputTokens, OutputTokens: resp.OutputTokens},
		}
	}()

	return chunks, nil
}

func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.impl.ListModels()
}
