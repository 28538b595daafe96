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
	sessionGoals    string
	sessionFormat   string
	sessionWarnings string
	sessionQuiet    bool
	sessionPipe     bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run a structured prompt non-interactively and log it",
	Long: `Run one structured prompt without any interactive input. The answer goes
to stdout and the run is always written to the session log, whatever the
enable_logging setting says.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := cmd.ErrOrStderr()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		env, err := loadEnvironment("")
		if err != nil {
			return err
		}
		format := env.settings.ReturnFormat(sessionFormat)

		if !sessionQuiet {
			fmt.Fprintln(status, "Running session with the following parameters:")
			fmt.Fprintf(status, "Goals: %s\n", sessionGoals)
			fmt.Fprintf(status, "Return Format: %s\n", format)
			if sessionWarnings != "" {
				fmt.Fprintf(status, "Warnings: %s\n", sessionWarnings)
			}
		}

		input := ""
		if sessionPipe {
			if input, err = cli.ReadPiped(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		provider, err := env.newProvider(ctx)
		if err != nil {
			return err
		}
		defer llm.Close(provider)

		env.settings.Behavior.EnableLogging = true
		handler, closeLog, err := env.newHandler(cmd, true, false, store.Entry{Command: cmd.Name()})
		if err != nil {
			return err
		}
		defer closeLog()

		runner := &prompt.Runner{
			Provider: provider,
			Model:    env.model,
			Template: env.settings.PromptTemplate,
			Handler:  handler,
			Status:   status,
			Logger:   logger.Named("session"),
		}
		if _, err := runner.Structured(ctx, prompt.Request{
			Goals:        sessionGoals,
			ReturnFormat: format,
			Warnings:     sessionWarnings,
			Context:      input,
		}); err != nil {
			return err
		}

		if !sessionQuiet {
			fmt.Fprintf(status, "Session output logged to %s\n", env.logDescription())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().StringVarP(&sessionGoals, "goals", "g", "", "Goals for the session")
	sessionCmd.Flags().StringVarP(&sessionFormat, "return-format", "f", "", "Expected return format")
	sessionCmd.Flags().StringVarP(&sessionWarnings, "warnings", "w", "", "Warnings to consider")
	sessionCmd.Flags().BoolVarP(&sessionQuiet, "quiet", "q", false, "Suppress informational output")
	sessionCmd.Flags().BoolVarP(&sessionPipe, "pipe", "p", false, "Read input from stdin")
}
