package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ola/config"
	"ola/streamers/cli"
)

var (
	configureProvider string
	configureAPIKey   string
	configureModel    string
	configureBaseURL  string
	configurePlugin   string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure a model provider",
	Long: `Add or update a provider in ~/.ola/config.yaml and make it active.

Missing values are asked for interactively. API keys found in
OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY are used without asking,
and a key may be given as "var.<name>" to read it from ola vars.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ask := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

		fmt.Fprintln(out, cli.Rainbow("🤖 Welcome to Ola Interactive Configuration! 🤖"))

		name := configureProvider
		if name == "" {
			options := make([]string, 0, len(config.SupportedProviders))
			for _, p := range config.SupportedProviders {
				options = append(options, string(p))
			}
			var err error
			if name, err = ask.Choose("Provider", options, options[0]); err != nil {
				return err
			}
		}
		name = config.NormalizeProvider(name)
		if !config.IsSupported(name) {
			return fmt.Errorf("Unsupported provider: %s", name)
		}
		provider := config.Provider(name)

		pc := config.ProviderConfig{Provider: name, APIKey: configureAPIKey, Model: configureModel}

		if pc.APIKey == "" && config.RequiresAPIKey(provider) {
			if key, ok := config.KeyFromEnv(provider); ok {
				fmt.Fprintf(out, "🔍 Using API key from %s\n", config.APIKeyEnv(provider))
				pc.APIKey = key
			} else {
				label := strings.ToUpper(name[:1]) + name[1:] + " API Key"
				if provider == config.ProviderGemini {
					fmt.Fprintln(out, "For Gemini, you need an API key from Google AI Studio (https://aistudio.google.com/)")
					label = "Google API Key"
				}
				key, err := ask.AskSecret(label)
				if err != nil {
					return err
				}
				pc.APIKey = key
			}
		} else if provider == config.ProviderOllama {
			fmt.Fprintln(out, "No API key needed for Ollama (using local instance)")
		}

		if provider == config.ProviderPlugin {
			pluginName := configurePlugin
			if pluginName == "" {
				var err error
				if pluginName, err = ask.Ask("Plugin name", ""); err != nil {
					return err
				}
			}
			pc.AdditionalSettings = map[string]string{"plugin": pluginName}
		}

		if configureBaseURL != "" {
			if pc.AdditionalSettings == nil {
				pc.AdditionalSettings = map[string]string{}
			}
			pc.AdditionalSettings["base_url"] = configureBaseURL
		}

		if pc.Model == "" {
			var err error
			if models := config.Models(provider); len(models) > 0 {
				pc.Model, err = ask.Choose("Model", models, models[0])
			} else {
				pc.Model, err = ask.Ask("Model", "")
			}
			if err != nil {
				return err
			}
		}

		// var.<name> references are validated after resolution
		check := pc
		resolved, err := config.ResolveVarRef(pc.APIKey)
		if err != nil {
			return err
		}
		check.APIKey = resolved
		if err := config.Validate(check); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		cfg, err := config.LoadDefault()
		if err != nil {
			return err
		}
		cfg.AddProvider(pc)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		cli.Success(out, "Configuration saved for provider: %s", pc.Provider)
		if pc.Model != "" {
			fmt.Fprintf(out, "Using model: %s\n", pc.Model)
		}
		logger.Debug("provider configured", "provider", pc.Provider, "path", cfg.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().StringVarP(&configureProvider, "provider", "p", "", "Provider: openai, anthropic, ollama, gemini or plugin")
	configureCmd.Flags().StringVarP(&configureAPIKey, "api-key", "a", "", "API key, or var.<name>")
	configureCmd.Flags().StringVarP(&configureModel, "model", "m", "", "Default model for the provider")
	configureCmd.Flags().StringVar(&configureBaseURL, "base-url", "", "Override the provider endpoint")
	configureCmd.Flags().StringVar(&configurePlugin, "plugin", "", "Installed plugin name, for the plugin provider")
}
