package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"ola/wave"
)

var rainbow = []color.Attribute{
	color.FgRed, color.FgYellow, color.FgGreen, color.FgCyan, color.FgBlue, color.FgMagenta,
}

// Rainbow colours each non-space rune in turn, following stdout's colour mode.
func Rainbow(s string) string {
	return rainbowString(s, !color.NoColor)
}

// RainbowTo writes s rainbow-coloured to w, in colour only when w is a terminal.
func RainbowTo(w io.Writer, s string) {
	fmt.Fprintln(w, rainbowString(s, IsTerminal(w)))
}

func rainbowString(s string, enabled bool) string {
	var b strings.Builder
	i := 0
	for _, r := range s {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(toggle(color.New(rainbow[i%len(rainbow)], color.Bold), enabled).Sprint(string(r)))
		i++
	}
	return b.String()
}

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("39")).
	Padding(1, 4)

var subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// Banner renders the start screen.
func Banner(version string, verbose bool, commands [][2]string) string {
	lines := []string{
		Rainbow("Welcome to ola"),
		subtleStyle.Render("Prompt any LLM from your terminal. " + version),
	}
	if verbose {
		lines = append(lines, "")
		for _, c := range commands {
			lines = append(lines, fmt.Sprintf("%-22s %s", c[0], subtleStyle.Render(c[1])))
		}
	}
	return bannerStyle.Render(strings.Join(lines, "\n"))
}

// WaveBanner announces a recursion wave inside its child process.
func WaveBanner(w io.Writer, index int) {
	fmt.Fprintf(w, "%s  Processing...\n", wave.Paint(index, IsTerminal(w)).Sprintf("[RECURSION WAVE %d]", index))
}

// Success prints a green check line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Styled(w, color.FgGreen).Sprintf("✓ "+format, args...))
}

// Styled returns a colour that is on only when w is a terminal. fatih/color
// otherwise decides from stdout, which is wrong for status written to stderr.
func Styled(w io.Writer, attrs ...color.Attribute) *color.Color {
	return toggle(color.New(attrs...), IsTerminal(w))
}

func toggle(c *color.Color, enabled bool) *color.Color {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// KeyValue renders aligned "key: value" rows.
func KeyValue(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	key := lipgloss.NewStyle().Bold(true).Width(width + 2)
	var lines []string
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, key.Render(r[0]+":"), r[1]))
	}
	return strings.Join(lines, "\n")
}
