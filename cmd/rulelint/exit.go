package rulelint

import (
	stderrors "errors"
	"fmt"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitFailure  = 2
)

// ExitError carries the process exit code of a command. Silent errors have
// already been reported by the command.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// silentExit reports an outcome that was already printed
func silentExit(code int) error {
	return &ExitError{Code: code, Silent: true}
}

// ExitCode maps the error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsSilent reports whether err was already reported to the user
func IsSilent(err error) bool {
	var exitErr *ExitError
	return stderrors.As(err, &exitErr) && exitErr.Silent
}
