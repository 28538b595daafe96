package cmd

import (
	"github.com/spf13/cobra"
)

var promptOpts promptOptions

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Run a structured prompt",
	Long: `Format goals, return format and warnings into a structured prompt and
stream the answer.

With -r N the prompt runs N times in sequence, each run in its own process
labelled with its recursion wave. With -i N the answer is refined with your
feedback up to N times in one conversation.`,
	Example: `  ola prompt -g "Summarise this diff" -f markdown
  git diff | ola prompt -p -g "Review" -q
  ola prompt -r 3 -g "Brainstorm names"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrompt(cmd, &promptOpts)
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	addPromptFlags(promptCmd, &promptOpts)
}
