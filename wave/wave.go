// Package wave runs one prompt invocation several times in sequence, each run
// in its own child process tagged with a wave index.
package wave

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvWave carries the 1-based wave index into each child.
	EnvWave = "OLA_RECURSION_WAVE"
	// EnvTotal carries the wave count into each child.
	EnvTotal = "OLA_RECURSION_TOTAL"

	MinWaves = 1
	MaxWaves = 10
)

// Invocation is the resolved argument set for one prompt execution.
// Stdin, when non-nil, is replayed to every child.
type Invocation struct {
	Args  []string
	Stdin []byte
}

// Wave records one child run.
type Wave struct {
	Index    int
	Colour   string
	ExitCode int
}

// Session is the ordered record of waves spawned by one Run.
type Session struct {
	Total int
	Waves []Wave
}

// Spawner starts one child for a wave and blocks until it exits.
// A non-nil error means the child could not be started at all.
type Spawner interface {
	Spawn(ctx context.Context, wave, total int, inv Invocation) (exitCode int, err error)
}

// Controller drives a recursion session.
type Controller struct {
	Spawner Spawner
	Status  io.Writer
	Logger  hclog.Logger
}

// NewController returns a Controller writing status lines to stderr.
func NewController(spawner Spawner, logger hclog.Logger) *Controller {
	return &Controller{
		Spawner: spawner,
		Status:  os.Stderr,
		Logger:  logger,
	}
}

// ValidateCount rejects wave counts outside [MinWaves, MaxWaves].
func ValidateCount(n int) error {
	if n < MinWaves || n > MaxWaves {
		return &CountError{N: n}
	}
	return nil
}

// Run spawns n waves in order and stops at the first child that fails.
func (c *Controller) Run(ctx context.Context, inv Invocation, n int) (*Session, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	status := c.Status
	if status == nil {
		status = io.Discard
	}

	colour := isTerminal(status)

	session := &Session{Total: n}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return session, err
		}

		fmt.Fprintln(status, Paint(i, colour).Sprintf("wave %d of %d", i, n))
		logger.Debug("spawning wave", "wave", i, "total", n)

		code, err := c.Spawner.Spawn(ctx, i, n, inv)
		if err != nil {
			logger.Error("wave spawn failed", "wave", i, "error", err)
			return session, &SpawnError{Wave: i, Err: err}
		}

		session.Waves = append(session.Waves, Wave{Index: i, Colour: Code(i), ExitCode: code})
		if code != 0 {
			logger.Warn("wave failed", "wave", i, "exit_code", code)
			return session, &ChildFailedError{Wave: i, Code: code}
		}
	}

	logger.Debug("recursion session complete", "waves", n)
	return session, nil
}

// FromEnv returns the wave index this process runs as, or 0 when it is not a
// wave child. Malformed or out-of-range values count as 0.
func FromEnv(lookup func(string) (string, bool)) int {
	raw, ok := lookup(EnvWave)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < MinWaves || i > MaxWaves {
		return 0
	}
	return i
}

// TotalFromEnv returns the wave count announced to a child, or 0.
func TotalFromEnv(lookup func(string) (string, bool)) int {
	raw, ok := lookup(EnvTotal)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || ValidateCount(n) != nil {
		return 0
	}
	return n
}
