package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/runner"
	"github.com/google/shlex"
)

// DefaultFormatCommand reformats Markdown without re-wrapping lines.
const DefaultFormatCommand = "deno fmt --line-width=0"

// ErrFormatterFailed is returned when the formatter exits non-zero.
var ErrFormatterFailed = errors.New("changelog formatter failed")

// Formatter runs an external formatter over the changelog after it is written.
type Formatter struct {
	Runner runner.Runner
	// Command is the formatter command line; the file path is appended.
	// Empty disables formatting.
	Command string
}

// Format runs the formatter on path.
func (f Formatter) Format(ctx context.Context, path string) error {
	if strings.TrimSpace(f.Command) == "" {
		return nil
	}

	parts, err := shlex.Split(f.Command)
	if err != nil {
		return fmt.Errorf("parsing formatter command %q: %w", f.Command, err)
	}
	if len(parts) == 0 {
		return nil
	}

	cmd := runner.Command{Name: parts[0], Args: append(parts[1:], path)}
	result, err := f.Runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("running formatter: %w", err)
	}
	if result.Failed() {
		return fmt.Errorf("%w: %s exited %d: %s", ErrFormatterFailed, cmd, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}
