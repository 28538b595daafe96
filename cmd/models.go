package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ola/config"
	"ola/llm"
	"ola/streamers/cli"
)

var (
	modelsProvider string
	modelsQuiet    bool
	modelsLive     bool
)

var modelBanners = map[config.Provider]string{
	config.ProviderOpenAI:    "🧠 OpenAI Models 🧠",
	config.ProviderAnthropic: "🎭 Anthropic Claude Models 🎭",
	config.ProviderOllama:    "🤖 Available Ollama Models 🤖",
	config.ProviderGemini:    "💎 Google Gemini Models 💎",
	config.ProviderPlugin:    "🔌 Plugin Models 🔌",
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models for a provider",
	Long: `List the models known for a provider, by default the active one.

Ollama and plugin models are always fetched live. Use --live to query the
OpenAI, Anthropic or Gemini API instead of the built-in list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		name := modelsProvider
		if name == "" {
			name = cfg.ActiveProvider
		}
		if name == "" {
			return fmt.Errorf("no provider specified and no active provider configured. Run 'ola configure' first or specify one with --provider")
		}
		name = config.NormalizeProvider(name)
		if !config.IsSupported(name) {
			return fmt.Errorf("Unsupported provider: %s", name)
		}
		provider := config.Provider(name)

		var models []string
		if modelsLive || len(config.Models(provider)) == 0 {
			if !modelsQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "Fetching available models for provider: %s\n", name)
			}
			pc, ok := cfg.Provider(name)
			if !ok {
				pc = config.ProviderConfig{Provider: name}
			}
			if models, err = liveModels(cmd, pc); err != nil {
				if provider == config.ProviderOllama {
					fmt.Fprintf(cmd.ErrOrStderr(), "Is Ollama running on %s?\n", pc.BaseURL())
				}
				return err
			}
		} else {
			models = config.Models(provider)
		}

		out := cmd.OutOrStdout()
		if modelsQuiet {
			for _, m := range models {
				fmt.Fprintln(out, m)
			}
			return nil
		}
		if len(models) == 0 {
			fmt.Fprintln(out, cli.Styled(out, 38, 5, 208).Sprint("🔍 No models found."))
			return nil
		}
		fmt.Fprintln(out, color.New(color.FgHiGreen, color.Bold).Sprint(modelBanners[provider]))
		for i, m := range models {
			fmt.Fprintln(out, color.HiCyanString("  %d. %s", i+1, m))
		}
		return nil
	},
}

func liveModels(cmd *cobra.Command, pc config.ProviderConfig) ([]string, error) {
	p, err := llm.NewProvider(cmd.Context(), pc)
	if err != nil {
		return nil, err
	}
	defer llm.Close(p)

	lister, ok := p.(llm.ModelLister)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot list models", pc.Provider)
	}
	models, err := lister.ListModels(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s models: %w", pc.Provider, err)
	}
	return models, nil
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "Provider to list (default: active provider)")
	modelsCmd.Flags().BoolVarP(&modelsQuiet, "quiet", "q", false, "Print model names only")
	modelsCmd.Flags().BoolVar(&modelsLive, "live", false, "Query the provider API")
}

