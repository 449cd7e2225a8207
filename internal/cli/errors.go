package cli

import "errors"

// ErrProblemsFound is returned when check finds invalid elements.
var ErrProblemsFound = errors.New("validation problems found")

// Exit codes for vex.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitProblems indicates check found invalid elements.
	ExitProblems = 1

	// ExitError indicates any other failure.
	ExitError = 2
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrProblemsFound):
		return ExitProblems
	default:
		return ExitError
	}
}
