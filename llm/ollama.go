package llm

import (
	"strings"
)

// OllamaProvider talks to a local Ollama server through its OpenAI-compatible API.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider connects to the server at baseURL, e.g. http://localhost:11434.
func NewOllamaProvider(baseURL string) *OllamaProvider {
	// Ollama ignores the key but the client requires one.
	return &OllamaProvider{
		OpenAIProvider: NewOpenAIProvider("ollama", v1Base(baseURL)),
	}
}

// v1Base normalizes an endpoint to its OpenAI-compatible "/v1/" root.
func v1Base(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/v1/"
}
