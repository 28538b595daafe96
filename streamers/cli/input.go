package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks questions on an output stream and reads answers from input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	raw any
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, raw: in}
}

// Ask reads a line, returning def when the answer is empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF && def != "" {
			return def, nil
		}
		return "", err
	}
	if v := strings.TrimSpace(line); v != "" {
		return v, nil
	}
	return def, nil
}

// AskSecret reads without echo when input is a terminal.
func (p *Prompter) AskSecret(label string) (string, error) {
	f, ok := p.raw.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Ask(label, "")
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Choose lists options and returns the selected one. An empty answer picks def.
func (p *Prompter) Choose(label string, options []string, def string) (string, error) {
	fmt.Fprintln(p.out, label)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	answer, err := p.Ask("Select", def)
	if err != nil {
		return "", err
	}
	for i, o := range options {
		if answer == fmt.Sprint(i+1) || strings.EqualFold(answer, o) {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid selection: %s", answer)
}
