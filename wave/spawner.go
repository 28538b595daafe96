package wave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExecSpawner re-executes a binary, by default the running one, for each wave.
// The wave index goes into the child's own environment; the parent's
// environment is left untouched.
type ExecSpawner struct {
	// Path defaults to os.Executable().
	Path string
	// Env is the base child environment. Nil means os.Environ().
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecSpawner returns a spawner wired to the process's standard streams.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (s *ExecSpawner) Spawn(ctx context.Context, wave, total int, inv Invocation) (int, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return -1, fmt.Errorf("resolve executable: %w", err)
		}
		path = exe
	}

	env := s.Env
	if env == nil {
		env = os.Environ()
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Env = append(append([]string{}, env...),
		fmt.Sprintf("%s=%d", EnvWave, wave),
		fmt.Sprintf("%s=%d", EnvTotal, total),
	)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if inv.Stdin != nil {
		cmd.Stdin = bytes.NewReader(inv.Stdin)
	} else {
		cmd.Stdin = s.Stdin
	}

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
