package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ola/llm"
	"ola/prompt"
	"ola/store"
	"ola/streamers/cli"
)

var (
	nonThinkPrompt    string
	nonThinkClipboard bool
	nonThinkQuiet     bool
	nonThinkPipe      bool
	nonThinkFilter    bool
)

var nonThinkCmd = &cobra.Command{
	Use:   "non-think",
	Short: "Send a prompt as-is, without the goals structure",
	Long: `Send a raw prompt to the active provider.

With --pipe, stdin becomes the prompt when --prompt is not given, and the
context when it is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := cmd.ErrOrStderr()
		if !nonThinkQuiet {
			fmt.Fprintln(status, "Running direct prompt without thinking steps...")
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		env, err := loadEnvironment("")
		if err != nil {
			return err
		}

		piped := ""
		if nonThinkPipe {
			if piped, err = cli.ReadPiped(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		text, promptContext := nonThinkPrompt, ""
		switch {
		case cmd.Flags().Changed("prompt") && piped != "":
			promptContext = piped
		case !cmd.Flags().Changed("prompt") && piped != "":
			text = piped
		case !cmd.Flags().Changed("prompt"):
			text, err = cli.NewPrompter(cmd.InOrStdin(), status).Ask("Enter your prompt", "")
			if err != nil {
				return err
			}
		}

		provider, err := env.newProvider(ctx)
		if err != nil {
			return err
		}
		defer llm.Close(provider)

		handler, closeLog, err := env.newHandler(cmd, nonThinkQuiet, false, store.Entry{Command: cmd.Name()})
		if err != nil {
			return err
		}
		defer closeLog()

		runner := &prompt.Runner{
			Provider:  provider,
			Model:     env.model,
			Hints:     hints(),
			Handler:   handler,
			Clipboard: copyToClipboard(nonThinkClipboard),
			Status:    status,
			Logger:    logger.Named("prompt"),
		}
		if _, err := runner.Direct(ctx, text, promptContext, nonThinkFilter); err != nil {
			return err
		}

		if !nonThinkQuiet {
			if promptContext != "" {
				fmt.Fprintf(status, "Context from stdin: %d characters\n", len(promptContext))
			}
			cli.Success(status, "Non-think prompt executed successfully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nonThinkCmd)
	nonThinkCmd.Flags().StringVarP(&nonThinkPrompt, "prompt", "p", "", "The raw prompt to send")
	nonThinkCmd.Flags().BoolVarP(&nonThinkClipboard, "clipboard", "c", false, "Copy the answer to the clipboard")
	nonThinkCmd.Flags().BoolVarP(&nonThinkQuiet, "quiet", "q", false, "Only print the answer")
	nonThinkCmd.Flags().BoolVarP(&nonThinkPipe, "pipe", "i", false, "Read input from stdin")
	nonThinkCmd.Flags().BoolVarP(&nonThinkFilter, "filter-thinking", "f", false, "Hide <think> blocks from the answer")
}
