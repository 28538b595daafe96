package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/config"
)

var _ = Describe("Model", func() {
	Describe("Validate", func() {
		DescribeTable("accepts well-formed providers",
			func(p config.ProviderConfig) {
				Expect(config.Validate(p)).To(Succeed())
			},
			Entry("openai", config.ProviderConfig{Provider: "openai", APIKey: "sk-abc", Model: "gpt-4o"}),
			Entry("anthropic", config.ProviderConfig{Provider: "Anthropic", APIKey: "sk-ant-abc", Model: "claude-2.1"}),
			Entry("ollama without a key", config.ProviderConfig{Provider: "ollama", Model: "llama3"}),
			Entry("gemini", config.ProviderConfig{Provider: "gemini", APIKey: "AIza"}),
			Entry("plugin", config.ProviderConfig{Provider: "plugin", AdditionalSettings: map[string]string{"plugin": "echo"}}),
		)

		DescribeTable("rejects malformed providers",
			func(p config.ProviderConfig, msg string) {
				Expect(config.Validate(p)).To(MatchError(ContainSubstring(msg)))
			},
			Entry("openai empty key", config.ProviderConfig{Provider: "openai", Model: "gpt-4o"}, "API key cannot be empty"),
			Entry("openai bad prefix", config.ProviderConfig{Provider: "openai", APIKey: "abc", Model: "gpt-4o"}, "should start with 'sk-'"),
			Entry("openai no model", config.ProviderConfig{Provider: "openai", APIKey: "sk-abc"}, "requires a model name"),
			Entry("anthropic bad prefix", config.ProviderConfig{Provider: "anthropic", APIKey: "sk-abc", Model: "claude-2.1"}, "should start with 'sk-ant-'"),
			Entry("ollama no model", config.ProviderConfig{Provider: "ollama"}, "Ollama requires a model name"),
			Entry("plugin without name", config.ProviderConfig{Provider: "plugin"}, "'plugin' setting"),
			Entry("unknown provider", config.ProviderConfig{Provider: "llama"}, "Unsupported provider: llama"),
		)
	})

	It("lists catalog models sorted", func() {
		models := config.Models(config.ProviderAnthropic)
		Expect(models).To(ContainElement("claude-3-haiku-20240307"))
		Expect(models[0]).To(Equal("claude-2.0"))
		Expect(config.Models(config.ProviderOllama)).To(BeEmpty())
	})

	It("knows which providers need keys", func() {
		Expect(config.RequiresAPIKey(config.ProviderOpenAI)).To(BeTrue())
		Expect(config.RequiresAPIKey(config.ProviderOllama)).To(BeFalse())
		Expect(config.APIKeyEnv(config.ProviderGemini)).To(Equal("GEMINI_API_KEY"))
		Expect(config.IsSupported("OpenAI")).To(BeTrue())
		Expect(config.IsSupported("llama")).To(BeFalse())
	})
})
