package wave

import (
	"errors"
	"fmt"
)

// ErrInvalidWaveCount is matched by every CountError.
var ErrInvalidWaveCount = errors.New("invalid wave count")

// CountError reports a wave count outside the accepted range.
type CountError struct {
	N int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("%s %d: recursion must be between %d and %d", ErrInvalidWaveCount, e.N, MinWaves, MaxWaves)
}

func (e *CountError) Unwrap() error { return ErrInvalidWaveCount }

// ExitCode follows the usage-error convention.
func (e *CountError) ExitCode() int { return 2 }

// SpawnError means the child for a wave could not be started.
type SpawnError struct {
	Wave int
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch recursion wave %d: %v", e.Wave, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func (e *SpawnError) ExitCode() int { return 1 }

// ChildFailedError means the child for a wave ran and exited non-zero.
type ChildFailedError struct {
	Wave int
	Code int
}

func (e *ChildFailedError) Error() string {
	return fmt.Sprintf("recursion wave %d failed with exit code %d", e.Wave, e.Code)
}

// ExitCode passes the child's status through. Children killed by a signal
// report a negative code, which maps to 1.
func (e *ChildFailedError) ExitCode() int {
	if e.Code <= 0 {
		return 1
	}
	return e.Code
}
