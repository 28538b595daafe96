package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ola/settings"
	"ola/streamers/cli"
)

var (
	settingsView          bool
	settingsDefaultModel  string
	settingsDefaultFormat string
	settingsLogging       string
	settingsLogFile       string
	settingsLogBackend    string
	settingsLogDSN        string
	settingsReset         bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or modify application settings",
	Long: `View or change ~/.ola/settings.yaml. With no flags the current settings
are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		flags := cmd.Flags()
		changed := settingsReset
		for _, name := range []string{"default-model", "default-format", "logging", "log-file", "log-backend", "log-dsn"} {
			changed = changed || flags.Changed(name)
		}

		s, err := settings.Load()
		if err != nil {
			if !changed {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			logger.Warn("settings unreadable, starting from defaults", "error", err)
			s = settings.Default()
		}

		if settingsReset {
			s = settings.Default()
			fmt.Fprintln(out, "Settings reset to default values")
		}
		if flags.Changed("default-model") {
			s.DefaultModel = settingsDefaultModel
			fmt.Fprintf(out, "Default model set to: %s\n", s.DefaultModel)
		}
		if flags.Changed("default-format") {
			s.Defaults.ReturnFormat = settingsDefaultFormat
			fmt.Fprintf(out, "Default return format set to: %s\n", s.Defaults.ReturnFormat)
		}
		if flags.Changed("logging") {
			enabled, err := parseSwitch(settingsLogging)
			if err != nil {
				return err
			}
			s.Behavior.EnableLogging = enabled
			state := "disabled"
			if enabled {
				state = "enabled"
			}
			fmt.Fprintf(out, "Logging is now %s\n", state)
		}
		if flags.Changed("log-file") {
			s.Behavior.LogFile = settingsLogFile
			fmt.Fprintf(out, "Log file set to: %s\n", s.Behavior.LogFile)
		}
		if flags.Changed("log-backend") {
			s.Behavior.LogBackend = strings.ToLower(settingsLogBackend)
			fmt.Fprintf(out, "Log backend set to: %s\n", s.Behavior.LogBackend)
		}
		if flags.Changed("log-dsn") {
			s.Behavior.LogDSN = settingsLogDSN
			fmt.Fprintln(out, "Log DSN updated")
		}

		if changed {
			if err := s.Validate(); err != nil {
				return err
			}
			if err := s.Save(); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			path, _ := settings.Path()
			cli.Success(out, "Settings saved successfully to: %s", path)
		}

		if settingsView || !changed {
			fmt.Fprintln(out, "Current settings:")
			fmt.Fprintln(out, cli.KeyValue(settingsRows(s)))
		}
		return nil
	},
}

// parseSwitch accepts on/off as well as the strconv boolean forms.
func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for --logging (expected on or off)", v)
	}
	return b, nil
}

func settingsRows(s *settings.Settings) [][2]string {
	dsn := ""
	if s.Behavior.LogDSN != "" {
		dsn = "********"
	}
	return [][2]string{
		{"default_model", s.DefaultModel},
		{"return_format", s.Defaults.ReturnFormat},
		{"quiet", strconv.FormatBool(s.Defaults.Quiet)},
		{"no_thinking", strconv.FormatBool(s.Defaults.NoThinking)},
		{"clipboard", strconv.FormatBool(s.Defaults.Clipboard)},
		{"goals_prefix", s.PromptTemplate.GoalsPrefix},
		{"return_format_prefix", s.PromptTemplate.ReturnFormatPrefix},
		{"warnings_prefix", s.PromptTemplate.WarningsPrefix},
		{"enable_logging", strconv.FormatBool(s.Behavior.EnableLogging)},
		{"log_backend", s.Behavior.LogBackend},
		{"log_file", s.Behavior.LogFile},
		{"log_dsn", dsn},
		{"thinking_animation", strings.Join(s.Behavior.ThinkingAnimation.Emojis, " ") + " " + s.Behavior.ThinkingAnimation.Text},
	}
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	f := settingsCmd.Flags()
	f.BoolVarP(&settingsView, "view", "v", false, "Show the current settings")
	f.StringVar(&settingsDefaultModel, "default-model", "", "Set the default model")
	f.StringVar(&settingsDefaultFormat, "default-format", "", "Set the default return format")
	f.StringVar(&settingsLogging, "logging", "", "Enable or disable the session log: on or off")
	f.StringVar(&settingsLogFile, "log-file", "", "Session log file (relative paths live under ~/.ola)")
	f.StringVar(&settingsLogBackend, "log-backend", "", "Session log backend: jsonl, sqlite or postgres")
	f.StringVar(&settingsLogDSN, "log-dsn", "", "Postgres DSN for the session log")
	f.BoolVarP(&settingsReset, "reset", "r", false, "Reset settings to default values")
}
