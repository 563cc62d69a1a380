package cmdutil

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/open-cli-collective/htmltoc/internal/transform"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitNoArgs    = 1 // no file argument
	ExitExtraArgs = 2 // more than one file argument
	ExitNoFile    = 3 // file missing or a directory
	ExitIO        = 4 // input/output error
	ExitSyntax    = 5 // invalid content or directive
	ExitInternal  = -1
	ExitSystem    = -2
)

// ExitUsage is returned for invalid flags and configuration.
const ExitUsage = ExitNoArgs

// ExitError carries the exit code for a failed command. Reported marks
// errors whose message has already been printed.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for err. Errors that do not
// carry one are usage errors raised by the flag parser.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

// Reported reports whether err has already been printed.
func Reported(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Reported
}

// KindExitCode maps a failure category to its exit code.
func KindExitCode(k transform.Kind) int {
	switch k {
	case transform.KindIO:
		return ExitIO
	case transform.KindInternal:
		return ExitInternal
	default:
		return ExitSyntax
	}
}

// PanicError converts a recovered panic value into an ExitError. Runtime
// faults count as system errors, anything else as an internal error.
func PanicError(p any) *ExitError {
	if re, ok := p.(runtime.Error); ok {
		return &ExitError{Code: ExitSystem, Err: fmt.Errorf("system error: %w", re)}
	}
	if err, ok := p.(error); ok {
		return &ExitError{Code: ExitInternal, Err: fmt.Errorf("internal error: %w", err)}
	}
	return &ExitError{Code: ExitInternal, Err: fmt.Errorf("internal error: %v", p)}
}
