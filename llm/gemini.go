package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey, endpoint string) (*GeminiProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) startChat(req *ChatRequest) (*genai.ChatSession, []genai.Part) {
	model := p.client.GenerativeModel(req.Model)

	if system := p.extractSystemPrompts(req.Messages); system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if len(req.StopSequences) > 0 {
		model.StopSequences = req.StopSequences
	}

	chat := model.StartChat()
	chat.History = p.convertHistory(req.Messages)
	return chat, p.lastUserParts(req.Messages)
}

func (p *GeminiProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	chat, parts := p.startChat(req)

	resp, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}

	out := &ChatResponse{
		ID:      uuid.New().String(),
		Content: p.extractContent(resp),
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = resp.Candidates[0].FinishReason.String()
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func (p *GeminiProvider) ChatStream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error) {
	chat, parts := p.startChat(req)
	iter := chat.SendMessageStream(ctx, parts...)

	chunks := make(chan StreamChunk)

	go func() {
		defer close(chunks)

		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				chunks <- StreamChunk{Done: true}
				return
			}
			if err != nil {
				chunks <- StreamChunk{Error: err, Done: true}
				return
			}

			if content := p.extractContent(resp); content != "" {
				chunks <- StreamChunk{Content: content}
			}
		}
	}()

	return chunks, nil
}

// ListModels returns model names without the "models/" prefix.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	iter := p.client.ListModels(ctx)
	var models []string
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	sort.Strings(models)
	return models, nil
}

func (p *GeminiProvider) extractSystemPrompts(messages []Message) string {
	var system []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
		}
	}
	return strings.Join(system, "\n\n")
}

// convertHistory maps everything except system prompts and the final user
// message, which is sent separately.
func (p *GeminiProvider) convertHistory(messages []Message) []*genai.Content {
	var turns []Message
	for _, m := range messages {
		if m.Role != RoleSystem {
			turns = append(turns, m)
		}
	}
	if len(turns) > 0 {
		turns = turns[:len(turns)-1]
	}

	var history []*genai.Content
	for _, m := range turns {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}

func (p *GeminiProvider) lastUserParts(messages []Message) []genai.Part {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return []genai.Part{genai.Text(messages[i].Content)}
		}
	}
	return []genai.Part{genai.Text("")}
}

func (p *GeminiProvider) extractContent(resp *genai.GenerateContentResponse) string {
	var content strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				fmt.Fprintf(&content, "%v", part)
			}
		}
	}
	return content.String()
}
