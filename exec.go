package boxexec

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/boxexec/boxexec/internal/pathutil"
)

// execFn performs the process-replacing execution, overridden in tests.
// The real implementation never returns on success.
var execFn = unix.Exec

// replaceProcess validates argv and replaces the current process image
// with program, passing argv verbatim. program is resolved via PATH
// lookup (execvp semantics); open descriptors and the environment are
// inherited.
//
// On success it never returns. Any return value is a terminal error:
// an InputError if an argv element carries an embedded NUL byte
// (rejected before any execution attempt), or an ExecError carrying
// the operating-system error text. The exec is never retried.
func replaceProcess(program string, argv []string) error {
	// The kernel receives NUL-terminated buffers; an embedded NUL would
	// silently truncate an argument, so it is rejected up front.
	if pathutil.ContainsNullByte(program) {
		return &InputError{Reason: "program name contains a NUL byte"}
	}
	for i, arg := range argv {
		if pathutil.ContainsNullByte(arg) {
			return &InputError{Reason: fmt.Sprintf("argument %d contains a NUL byte", i)}
		}
	}

	path, err := lookPathFn(program)
	if err != nil {
		return &ExecError{Program: program, Err: err}
	}

	err = execFn(path, argv, os.Environ())
	// Exec only returns on failure.
	return &ExecError{Program: program, Err: err}
}
