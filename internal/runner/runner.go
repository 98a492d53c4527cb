// Package runner executes external CLIs (gh, the changelog formatter) as
// scoped resources: the process is started, its input written and closed,
// its output drained, and it is always waited on, on every exit path.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when the command binary is not on PATH.
var ErrNotFound = errors.New("command not found")

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for subprocess execution.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Command describes one subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory (empty = current directory).
	Dir string
	// Env is appended to the parent environment.
	Env []string
	// Stdin, when non-nil, is written to the process input which is then closed.
	Stdin []byte
}

// String renders the command line for messages.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Failed reports whether the process exited non-zero.
func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// Runner runs commands. Exec is the real implementation; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	// Timeout bounds each command (0 = no timeout).
	Timeout time.Duration
}

// Run starts the command and waits for it. A non-zero exit is reported in
// Result.ExitCode, not as an error; errors mean the process could not be run
// or its pipes failed.
func (e Exec) Run(ctx context.Context, c Command) (*Result, error) {
	ctx, cancel := e.applyTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if errors.Is(cmd.Err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNotFound)
	}
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe for %s: %w", c.Name, err)
	}
	var stdin io.WriteCloser
	if c.Stdin != nil {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("creating stdin pipe for %s: %w", c.Name, err)
		}
	}

	logDebug("[runner] starting: %s", c)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrNotFound)
		}
		return nil, fmt.Errorf("starting %s: %w", c.Name, err)
	}

	out, pipeErr := pump(stdin, c.Stdin, stdout)
	waitErr := cmd.Wait()
	result := &Result{
		Stdout:   string(out),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("running %s: %w", c.Name, ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", c.Name, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	if pipeErr != nil && result.ExitCode == 0 {
		return nil, fmt.Errorf("talking to %s: %w", c.Name, pipeErr)
	}

	logDebug("[runner] %s exited %d after %s", c.Name, result.ExitCode, result.Duration)
	return result, nil
}

// pump writes input to stdin (closing it afterwards) while draining stdout,
// so neither side blocks on a full pipe buffer.
func pump(stdin io.WriteCloser, input []byte, stdout io.Reader) ([]byte, error) {
	var g errgroup.Group
	var out []byte

	if stdin != nil {
		g.Go(func() error {
			defer stdin.Close()
			_, err := stdin.Write(input)
			return err
		})
	}
	g.Go(func() error {
		var err error
		out, err = io.ReadAll(stdout)
		return err
	})

	return out, g.Wait()
}

// applyTimeout returns a context with timeout if Timeout is set.
func (e Exec) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(ctx, e.Timeout)
	}
	return ctx, func() {}
}
