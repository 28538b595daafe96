package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ola/config"
)

// Factory builds a provider from its configuration entry.
type Factory func(ctx context.Context, pc config.ProviderConfig) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterFactory makes an extra provider kind available to NewProvider.
// Built-in providers cannot be replaced.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[config.NormalizeProvider(name)] = f
}

// NewProvider returns a provider for pc. The API key may be stored inline, as
// a "var.NAME" reference, or left empty to fall back to the environment.
func NewProvider(ctx context.Context, pc config.ProviderConfig) (Provider, error) {
	kind := config.Provider(config.NormalizeProvider(pc.Provider))

	key, err := resolveKey(pc, kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.ProviderOpenAI:
		var base string
		if u := pc.Setting("base_url"); u != "" {
			base = v1Base(u)
		}
		return NewOpenAIProvider(key, base), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(key, pc.Setting("base_url")), nil
	case config.ProviderOllama:
		return NewOllamaProvider(pc.BaseURL()), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, key, pc.Setting("base_url"))
	}

	factoriesMu.RLock()
	f, ok := factories[string(kind)]
	factoriesMu.RUnlock()
	if ok {
		pc.APIKey = key
		return f(ctx, pc)
	}
	return nil, fmt.Errorf("unsupported provider: %s", pc.Provider)
}

func resolveKey(pc config.ProviderConfig, kind config.Provider) (string, error) {
	key, err := config.ResolveVarRef(strings.TrimSpace(pc.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to resolve API key: %w", err)
	}
	if key == "" {
		key, _ = config.KeyFromEnv(kind)
	}
	if key == "" && config.RequiresAPIKey(kind) {
		return "", fmt.Errorf("no API key for %s: set it with 'ola configure' or %s", kind, config.APIKeyEnv(kind))
	}
	return key, nil
}
