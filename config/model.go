package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderGemini    Provider = "gemini"
	ProviderPlugin    Provider = "plugin"
)

// SupportedProviders lists providers in the order they are offered by `ola configure`.
var SupportedProviders = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderGemini, ProviderPlugin}

// Catalog maps a provider to the models listed when the provider API is not queried.
// Ollama models depend on what is pulled locally, so its list is always fetched live.
var Catalog = map[Provider][]string{
	ProviderOpenAI: {
		"gpt-4o",
		"gpt-4",
		"o3",
		"o3-pro",
		"o4",
		"o4-mini",
		"o4-mini-high",
	},
	ProviderAnthropic: {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
		"claude-2.1",
		"claude-2.0",
	},
	ProviderGemini: {
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-1.0-pro",
		"gemini-1.0-pro-vision",
	},
}

var defaultBaseURLs = map[Provider]string{
	ProviderOpenAI:    "https://api.openai.com",
	ProviderAnthropic: "https://api.anthropic.com",
	ProviderOllama:    "http://localhost:11434",
	ProviderGemini:    "https://generativelanguage.googleapis.com",
}

var apiKeyEnv = map[Provider]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// NormalizeProvider lower-cases a provider name so "OpenAI" and "openai" match.
func NormalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsSupported reports whether name is a known provider.
func IsSupported(name string) bool {
	p := Provider(NormalizeProvider(name))
	for _, s := range SupportedProviders {
		if s == p {
			return true
		}
	}
	return false
}

// DefaultBaseURL returns the provider's public endpoint, or "" when it has none.
func DefaultBaseURL(p Provider) string {
	return defaultBaseURLs[Provider(NormalizeProvider(string(p)))]
}

// APIKeyEnv returns the environment variable holding the provider's key.
func APIKeyEnv(p Provider) string {
	return apiKeyEnv[Provider(NormalizeProvider(string(p)))]
}

// KeyFromEnv returns the API key for p from the environment, if set.
func KeyFromEnv(p Provider) (string, bool) {
	name := APIKeyEnv(p)
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// RequiresAPIKey reports whether p needs a key to be usable.
func RequiresAPIKey(p Provider) bool {
	switch Provider(NormalizeProvider(string(p))) {
	case ProviderOllama, ProviderPlugin:
		return false
	}
	return true
}

// Models returns the catalog entries for p, sorted.
func Models(p Provider) []string {
	models := append([]string(nil), Catalog[Provider(NormalizeProvider(string(p)))]...)
	sort.Strings(models)
	return models
}

// Validate checks that a provider entry is usable before it is saved.
func Validate(p ProviderConfig) error {
	key := strings.TrimSpace(p.APIKey)

	switch Provider(NormalizeProvider(p.Provider)) {
	case ProviderOpenAI:
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("OpenAI API key should start with 'sk-'")
		}
		if p.Model == "" {
			return fmt.Errorf("OpenAI requires a model name")
		}
	case ProviderAnthropic:
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("Anthropic API key should start with 'sk-ant-'")
		}
		if p.Model == "" {
			return fmt.Errorf("Anthropic requires a model name")
		}
	case ProviderOllama:
		if p.Model == "" {
			return fmt.Errorf("Ollama requires a model name")
		}
	case ProviderGemini:
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}
	case ProviderPlugin:
		if p.Setting("plugin") == "" {
			return fmt.Errorf("plugin provider requires a 'plugin' setting naming the installed plugin")
		}
		if _, _, err := p.PluginRef(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Unsupported provider: %s", p.Provider)
	}
	return nil
}
