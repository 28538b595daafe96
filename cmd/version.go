package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Long = fmt.Sprintf(`ola %s

A friendly CLI for prompting reasoning models. Goals, a return format and
warnings are formatted into a structured prompt and the answer is streamed
back from the configured provider.

Get started:
  ola configure             Pick a provider and store its API key
  ola -g "Explain HCL"      Run a structured prompt
  ola -r 3 -g "..."         Run the same prompt in three recursion waves
  ola project create -n x   Keep goals, context and files together`, Version)
}
