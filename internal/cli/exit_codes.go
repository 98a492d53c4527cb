package cli

import (
	"errors"
	"fmt"
)

// Exit codes for the relnotes CLI
const (
	// ExitSuccess indicates the entry was written (or printed, for --dry-run)
	ExitSuccess = 0

	// ExitFailure indicates any failure; the message on stderr says which
	ExitFailure = 1
)

// ExitError carries a process exit code after the error has been reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError returns an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
