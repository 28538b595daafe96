package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ola/llm"
	"ola/plugin"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Plugin management commands",
	Long: `Commands for installing, building and testing model provider plugins.

Plugins live in ~/.ola/plugins/<name>/<version>/plugin. Select one with a
provider entry of kind "plugin" whose "plugin" setting names it.`,
}

var pluginListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		installed, err := plugin.Installed()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(installed) == 0 {
			fmt.Fprintln(out, "No plugins installed")
			return nil
		}
		for _, p := range installed {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

var pluginModelsCmd = &cobra.Command{
	Use:   "models <plugin-name>",
	Short: "List the models a plugin serves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")

		p, err := plugin.Load(args[0], version, logger)
		if err != nil {
			return fmt.Errorf("failed to load plugin: %w", err)
		}
		defer p.Close()

		models, err := p.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Available models for plugin '%s':\n", p.Name())
		for _, m := range models {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", m)
		}
		return nil
	},
}

var pluginCompleteCmd = &cobra.Command{
	Use:   "complete <plugin-name> <model> <prompt>",
	Short: "Send one prompt to a plugin",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		settings, _ := cmd.Flags().GetStringToString("set")

		p, err := plugin.Load(args[0], version, logger)
		if err != nil {
			return fmt.Errorf("failed to load plugin: %w", err)
		}
		defer p.Close()

		if len(settings) > 0 {
			if err := p.Configure(settings); err != nil {
				return fmt.Errorf("failed to configure plugin: %w", err)
			}
		}

		resp, err := p.Chat(cmd.Context(), &llm.ChatRequest{
			Model:    args[1],
			Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, strings.Join(args[2:], " "))},
		})
		if err != nil {
			return fmt.Errorf("plugin call failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
		logger.Debug("plugin completion", "plugin", p.Name(), "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
		return nil
	},
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <plugin-name> <source>",
	Short: "Install a plugin from a GitHub release",
	Long: `Download <repo>_<os>_<arch>.tar.gz from the release tagged --version,
verify it against the release's checksums.txt and install the "plugin"
binary it contains. Source is "github.com/owner/repo" or "owner/repo".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, source := args[0], args[1]
		version, _ := cmd.Flags().GetString("version")
		if version == plugin.DefaultVersion {
			return fmt.Errorf("install requires a release tag, e.g. --version v0.1.0")
		}

		dir, err := plugin.Dir(name, version)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Installing plugin '%s' %s from %s...\n", name, version, source)
		installer := &plugin.Installer{}
		if err := installer.Install(cmd.Context(), source, version, dir); err != nil {
			return fmt.Errorf("install failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Plugin '%s' installed to %s\n", name, dir)
		return nil
	},
}

var pluginBuildCmd = &cobra.Command{
	Use:   "build <plugin-name> <source-path>",
	Short: "Build a plugin from source",
	Long:  `Build a plugin from a Go source directory and install it to ~/.ola/plugins/<name>/<version>/plugin`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pluginName := args[0]
		version, _ := cmd.Flags().GetString("version")

		absSourcePath, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("failed to resolve source path: %w", err)
		}
		if _, err := os.Stat(absSourcePath); os.IsNotExist(err) {
			return fmt.Errorf("source path does not exist: %s", absSourcePath)
		}

		outputPath, err := plugin.BinaryPath(pluginName, version)
		if err != nil {
			return fmt.Errorf("failed to get plugin directory: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("failed to create plugin directory: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Building plugin '%s' (version: %s)...\n", pluginName, version)
		fmt.Fprintf(out, "  Source: %s\n", absSourcePath)
		fmt.Fprintf(out, "  Output: %s\n", outputPath)

		buildCmd := exec.CommandContext(cmd.Context(), "go", "build", "-o", outputPath, absSourcePath)
		buildCmd.Stdout = os.Stdout
		buildCmd.Stderr = os.Stderr
		if err := buildCmd.Run(); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		fmt.Fprintf(out, "Plugin '%s' built successfully!\n", pluginName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginModelsCmd)
	pluginCmd.AddCommand(pluginCompleteCmd)
	pluginCmd.AddCommand(pluginInstallCmd)
	pluginCmd.AddCommand(pluginBuildCmd)

	pluginModelsCmd.Flags().StringP("version", "v", plugin.DefaultVersion, "Plugin version to use")
	pluginCompleteCmd.Flags().StringP("version", "v", plugin.DefaultVersion, "Plugin version to use")
	pluginCompleteCmd.Flags().StringToString("set", nil, "Plugin settings, e.g. --set prefix=>>")
	pluginInstallCmd.Flags().StringP("version", "v", plugin.DefaultVersion, "Release tag to install")
	pluginBuildCmd.Flags().StringP("version", "v", plugin.DefaultVersion, "Plugin version to install as")
}
