package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ola/streamers/cli"
)

var startVerbose bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Show the welcome banner",
	Run: func(cmd *cobra.Command, args []string) {
		var commands [][2]string
		for _, c := range rootCmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				commands = append(commands, [2]string{c.Name(), c.Short})
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Banner(Version, startVerbose, commands))
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&startVerbose, "verbose", "v", false, "List every command")
}
