package cli

// ANSI codes for the spinner, which only draws on a terminal.
const (
	ColorReset = "\033[0m"
	ColorGray  = "\033[90m"
)
