package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ola/config"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Manage variables",
	Long: `Manage variables stored in ~/.ola/vars.txt.

Provider API keys can reference a variable as "var.<name>" instead of
being stored in the config file.`,
}

var varsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := config.LoadVars()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(vars) == 0 {
			fmt.Fprintln(out, "No variables set")
			return nil
		}
		names, err := config.ListVars()
		if err != nil {
			return err
		}
		for _, name := range names {
			if config.IsSecretName(name) {
				fmt.Fprintf(out, "%s=********\n", name)
			} else {
				fmt.Fprintf(out, "%s=%s\n", name, vars[name])
			}
		}
		return nil
	},
}

var varsGetCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Get a variable value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.GetVar(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var varsSetCmd = &cobra.Command{
	Use:   "set [name] [value]",
	Short: "Set a variable value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetVar(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Variable '%s' set\n", args[0])
		return nil
	},
}

var varsDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"rm"},
	Short:   "Delete a variable",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteVar(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Variable '%s' deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.AddCommand(varsListCmd)
	varsCmd.AddCommand(varsGetCmd)
	varsCmd.AddCommand(varsSetCmd)
	varsCmd.AddCommand(varsDeleteCmd)
}
