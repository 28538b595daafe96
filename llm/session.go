package llm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Session keeps a running conversation with one model.
type Session struct {
	provider      Provider
	model         string
	systemPrompts []string
	messages      []Message
	maxTokens     int
	logger        hclog.Logger
}

func NewSession(provider Provider, model string, systemPrompts ...string) *Session {
	return &Session{
		provider:      provider,
		model:         model,
		systemPrompts: systemPrompts,
		messages:      []Message{},
		logger:        hclog.NewNullLogger(),
	}
}

// SetLogger routes per-turn trace output.
func (s *Session) SetLogger(logger hclog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

func (s *Session) SetMaxTokens(n int) {
	s.maxTokens = n
}

func (s *Session) AddSystemPrompt(prompt string) {
	s.systemPrompts = append(s.systemPrompts, prompt)
}

// History returns the user and assistant turns so far.
func (s *Session) History() []Message {
	return append([]Message(nil), s.messages...)
}

// Turns returns the number of completed exchanges.
func (s *Session) Turns() int {
	return len(s.messages) / 2
}

func (s *Session) request(userMessage string) *ChatRequest {
	msgs := make([]Message, 0, len(s.systemPrompts)+len(s.messages)+1)
	for _, sp := range s.systemPrompts {
		msgs = append(msgs, NewTextMessage(RoleSystem, sp))
	}
	msgs = append(msgs, s.messages...)
	msgs = append(msgs, NewTextMessage(RoleUser, userMessage))

	return &ChatRequest{
		Model:     s.model,
		Messages:  msgs,
		MaxTokens: s.maxTokens,
	}
}

func (s *Session) record(userMessage, reply string) {
	s.messages = append(s.messages,
		NewTextMessage(RoleUser, userMessage),
		NewTextMessage(RoleAssistant, reply),
	)
}

func (s *Session) Send(ctx context.Context, userMessage string) (*ChatResponse, error) {
	s.logger.Trace("sending message", "model", s.model, "turn", s.Turns()+1, "length", len(userMessage))

	resp, err := s.provider.Chat(ctx, s.request(userMessage))
	if err != nil {
		return nil, err
	}

	s.record(userMessage, resp.Content)
	return resp, nil
}

// SendStream streams the reply through onChunk and records the full text once
// the stream ends. A failed stream leaves the history unchanged.
func (s *Session) SendStream(ctx context.Context, userMessage string, onChunk func(StreamChunk)) (*ChatResponse, error) {
	s.logger.Trace("streaming message", "model", s.model, "turn", s.Turns()+1, "length", len(userMessage))

	stream, err := s.provider.ChatStream(ctx, s.request(userMessage))
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	var lastChunk StreamChunk

	for chunk := range stream {
		if chunk.Error != nil {
			// drain so the producer goroutine can exit
			for range stream {
			}
			return nil, chunk.Error
		}

		content.WriteString(chunk.Content)

		if onChunk != nil {
			onChunk(chunk)
		}

		lastChunk = chunk
	}

	resp := &ChatResponse{
		ID:      uuid.New().String(),
		Content: content.String(),
	}
	if lastChunk.Usage != nil {
		resp.Usage = *lastChunk.Usage
	}

	s.record(userMessage, resp.Content)
	return resp, nil
}
