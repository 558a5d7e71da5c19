package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrRunnerUnavailable means the simulator executable is missing, not executable or could not be started.
	ErrRunnerUnavailable = errors.New("algorithm runner unavailable")
	// ErrRunnerFailed means the simulator exited with a non-zero status.
	ErrRunnerFailed = errors.New("algorithm runner failed")
	// ErrMalformedOutput means stdout could not be parsed as the expected JSON document.
	ErrMalformedOutput = errors.New("malformed runner output")
	// ErrTimeout means the invocation exceeded its deadline and was killed.
	ErrTimeout = errors.New("algorithm runner timed out")
)

// ExitError carries the exit status and stderr of a failed invocation.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%v: exit status %d", e.Args, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap lets errors.Is match ErrRunnerFailed.
func (e *ExitError) Unwrap() error {
	return ErrRunnerFailed
}

const excerptLimit = 200

// excerpt trims runner output for inclusion in diagnostics.
func excerpt(data []byte) string {
	if len(data) <= excerptLimit {
		return string(data)
	}
	return string(data[:excerptLimit]) + "..."
}
