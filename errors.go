package boxexec

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the boxexec package. Every failure of a
// launch wraps exactly one of these; there is no partial-success state
// beyond the single filesystem-enforcement fallback.
var (
	// ErrInput indicates invalid input: an empty command, an argument
	// with an embedded NUL byte, or a writable root that cannot be
	// canonicalized. Input errors are raised before any enforcement or
	// execution attempt.
	ErrInput = errors.New("boxexec: invalid input")

	// ErrNetworkEnforcement indicates the network seccomp filter could
	// not be installed. There is no fallback for network filtering, so
	// this is always fatal.
	ErrNetworkEnforcement = errors.New("boxexec: network filter installation failed")

	// ErrFilesystemEnforcement indicates native filesystem rule
	// installation failed and no fallback was available.
	ErrFilesystemEnforcement = errors.New("boxexec: filesystem rule installation failed")

	// ErrExec indicates the process-replacing execution itself failed.
	// A successful exec never returns, so any error from the replacer
	// is terminal.
	ErrExec = errors.New("boxexec: exec failed")
)

// InputError is returned for malformed launch input. It wraps ErrInput
// so that errors.Is(err, ErrInput) still works.
type InputError struct {
	// Reason explains what was wrong with the input.
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInput.Error(), e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInput
}

// NetworkEnforcementError is returned when the seccomp network filter
// cannot be installed. It wraps both ErrNetworkEnforcement and the
// underlying installer error.
type NetworkEnforcementError struct {
	// Err is the underlying installer error.
	Err error
}

func (e *NetworkEnforcementError) Error() string {
	return fmt.Sprintf("%s: %v", ErrNetworkEnforcement.Error(), e.Err)
}

func (e *NetworkEnforcementError) Unwrap() []error {
	return []error{ErrNetworkEnforcement, e.Err}
}

// FilesystemEnforcementError is returned when native filesystem rule
// installation failed and the bwrap fallback is unavailable. It wraps
// both ErrFilesystemEnforcement and the underlying installer error.
type FilesystemEnforcementError struct {
	// Err is the underlying installer error.
	Err error
}

func (e *FilesystemEnforcementError) Error() string {
	return fmt.Sprintf("%s (and bwrap is not available as a fallback): %v", ErrFilesystemEnforcement.Error(), e.Err)
}

func (e *FilesystemEnforcementError) Unwrap() []error {
	return []error{ErrFilesystemEnforcement, e.Err}
}

// ExecError is returned when the process-replacing execution call
// returned instead of replacing the image, e.g. because the program
// was not found or not executable. It wraps both ErrExec and the
// operating-system error.
type ExecError struct {
	// Program is the program name that was being executed.
	Program string

	// Err is the operating-system error from the exec call or the
	// preceding PATH lookup.
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrExec.Error(), e.Program, e.Err)
}

func (e *ExecError) Unwrap() []error {
	return []error{ErrExec, e.Err}
}
