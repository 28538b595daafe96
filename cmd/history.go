package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ola/settings"
	"ola/store"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent prompt runs from the session log",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return err
		}
		backend, target, err := s.LogTarget()
		if err != nil {
			return err
		}
		log, err := store.Open(backend, target)
		if err != nil {
			return err
		}
		defer log.Close()

		entries, err := log.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read session log: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No sessions logged yet")
			return nil
		}

		for _, e := range entries {
			header := fmt.Sprintf("%s  %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Model)
			if e.RecursionWave != nil {
				header += fmt.Sprintf("  wave %d", *e.RecursionWave)
			}
			fmt.Fprintln(out, color.New(color.Bold).Sprint(header))
			fmt.Fprintf(out, "  Goals: %s\n", firstLine(e.Goals))
			fmt.Fprintf(out, "  Return Format: %s\n", e.ReturnFormat)
			fmt.Fprintf(out, "  Output: %d characters\n", e.OutputLength)
		}
		return nil
	},
}

func firstLine(s string) string {
	line, _, cut := strings.Cut(strings.TrimSpace(s), "\n")
	if cut {
		return line + " ..."
	}
	return line
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print entries as JSON")
}
