package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StdinPiped reports whether stdin is redirected from a file or pipe.
func StdinPiped() bool {
	return !IsTerminal(os.Stdin)
}

// ReadPiped reads all of r when it is not a terminal. It returns "" for an
// interactive stdin.
func ReadPiped(r io.Reader) (string, error) {
	if IsTerminal(r) {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
