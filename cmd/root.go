package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ola/wave"
)

// EnvLogLevel sets the default for --log-level.
const EnvLogLevel = "OLA_LOG_LEVEL"

var (
	logLevel   string
	rootPrompt promptOptions
	logger     hclog.Logger = hclog.NewNullLogger()
)

var rootCmd = &cobra.Command{
	Use:   "ola",
	Short: "A friendly CLI for prompting reasoning models",
	Long: `ola formats goals, a return format and warnings into a structured prompt,
sends it to the configured provider and streams the answer.

Use without a subcommand for the default prompt behaviour.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd.ErrOrStderr())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrompt(cmd, &rootPrompt)
	},
}

func setupLogger(w io.Writer) error {
	level := logLevel
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	if level == "" {
		level = "warn"
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q (expected trace, debug, info, warn, error or off)", level)
	}

	name := "ola"
	if i := wave.FromEnv(os.LookupEnv); i > 0 {
		name = fmt.Sprintf("ola.wave-%d", i)
	}
	logger = hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: w,
	})
	hclog.SetDefault(logger)
	return nil
}

// Execute runs the root command and exits with the status carried by the error.
func Execute() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode prints err unless it was already shown and returns the process
// status it maps to.
func exitCode(err error, w io.Writer) int {
	var reported interface{ Reported() bool }
	if !errors.As(err, &reported) || !reported.Reported() {
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "unknown flag") {
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level: trace, debug, info, warn, error, off (env "+EnvLogLevel+")")
	addPromptFlags(rootCmd, &rootPrompt)
}
