package main

import (
	"fmt"
	"strings"

	"ola/plugin"
)

// models maps each model name to how it transforms the last user message.
var models = map[string]func(string) string{
	"echo":    func(s string) string { return s },
	"shout":   strings.ToUpper,
	"whisper": strings.ToLower,
}

// EchoProvider answers with the last user message. It is useful for testing
// plugin installation and the prompt pipeline without network access.
type EchoProvider struct {
	prefix string
}

func (p *EchoProvider) Configure(settings map[string]string) error {
	p.prefix = settings["prefix"]
	return nil
}

func (p *EchoProvider) Complete(req plugin.CompletionRequest) (*plugin.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = "echo"
	}
	transform, ok := models[model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", model)
	}

	var last string
	for _, m := range req.Messages {
		if m.Role == "user" {
			last = m.Content
		}
	}

	return &plugin.CompletionResponse{
		Content:      p.prefix + transform(last),
		InputTokens:  len(strings.Fields(last)),
		OutputTokens: len(strings.Fields(last)),
	}, nil
}

func (p *EchoProvider) ListModels() ([]string, error) {
	return []string{"echo", "shout", "whisper"}, nil
}

func main() {
	plugin.Serve(&EchoProvider{})
}
