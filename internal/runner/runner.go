// Package runner drives the external graph/SAT simulator as a subprocess and
// decodes the JSON documents it prints.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"graphbench/internal/logger"
)

// DefaultCommand is the simulator name looked up when none is configured.
const DefaultCommand = "graph"

// DefaultTimeout bounds one invocation. Zero disables the deadline.
const DefaultTimeout = 10 * time.Minute

// waitDelay bounds how long a killed invocation may keep its output pipes open.
const waitDelay = 2 * time.Second

// Request describes one iterative-mode invocation.
type Request struct {
	Size        int
	Probability float64
	Algorithm   Algorithm
	Iterations  int
}

// Args renders the request as simulator flags.
func (r Request) Args() []string {
	return []string{
		"--n=" + strconv.Itoa(r.Size),
		"--p=" + strconv.FormatFloat(r.Probability, 'f', -1, 64),
		"--algorithm=" + string(r.Algorithm),
		"--iterations=" + strconv.Itoa(r.Iterations),
		"--nograph",
	}
}

// SatArgs renders the flags for a single SAT-CLIQUE formula run.
func SatArgs(formula string) []string {
	return []string{"--algorithm=" + string(AlgorithmSatClique), "--nograph", formula}
}

// Runner invokes the simulator binary. It is safe to reuse across calls; each
// call spawns one process.
type Runner struct {
	path    string
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-invocation deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for debug tracing of invocations.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New resolves command to an executable and returns a Runner for it.
// A missing or non-executable simulator yields ErrRunnerUnavailable.
func New(command string, opts ...Option) (*Runner, error) {
	path, err := CheckCommand(command)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		path:    path,
		timeout: DefaultTimeout,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the resolved executable path.
func (r *Runner) Path() string {
	return r.path
}

// RunIterations executes req.Iterations trials in a single process and decodes the result.
func (r *Runner) RunIterations(ctx context.Context, req Request) (*IterativeOutput, error) {
	stdout, err := r.exec(ctx, req.Args())
	if err != nil {
		return nil, err
	}
	return ParseIterative(stdout)
}

// RunSat executes the SAT-CLIQUE reduction for one formula.
func (r *Runner) RunSat(ctx context.Context, formula string) (*SatOutput, error) {
	stdout, err := r.exec(ctx, SatArgs(formula))
	if err != nil {
		return nil, err
	}
	return ParseSat(stdout)
}

func (r *Runner) exec(ctx context.Context, args []string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Env = os.Environ()
	// Kill the whole process group on cancellation; a wrapper script's
	// children would otherwise hold stdout open past the deadline.
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Invoking runner", "command", r.path, "args", strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("Runner finished", "elapsed", time.Since(start), "stdout_bytes", stdout.Len())

	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v: %s %s", ErrTimeout, r.timeout, r.path, strings.Join(args, " "))
		}
		return nil, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &ExitError{
			Args:     append([]string{r.path}, args...),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(excerpt(stderr.Bytes())),
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrRunnerUnavailable, r.path, err)
}

// CheckCommand resolves command to an executable path.
//
// Absolute paths must exist; paths containing a separator are resolved against
// the working directory; bare names are looked up as ./bin/<name>, bin/<name>
// and finally on $PATH.
func CheckCommand(command string) (string, error) {
	if command == "" {
		command = DefaultCommand
	}

	if filepath.IsAbs(command) {
		if err := checkExecutable(command); err != nil {
			return "", err
		}
		return command, nil
	}

	if filepath.Dir(command) != "." || strings.ContainsRune(command, filepath.Separator) {
		absPath, err := filepath.Abs(command)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrRunnerUnavailable, command, err)
		}
		if err := checkExecutable(absPath); err != nil {
			return "", err
		}
		return absPath, nil
	}

	candidates := []string{
		filepath.Join(".", "bin", command),
		filepath.Join("bin", command),
	}
	for _, candidate := range candidates {
		if checkExecutable(candidate) == nil {
			absPath, err := filepath.Abs(candidate)
			if err == nil {
				return absPath, nil
			}
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(command); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s not found. Tried: %v and $PATH (have you built the simulator?)",
		ErrRunnerUnavailable, command, candidates)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: not found at %s", ErrRunnerUnavailable, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrRunnerUnavailable, path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrRunnerUnavailable, path)
	}
	return nil
}
