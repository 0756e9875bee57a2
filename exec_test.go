package boxexec

import (
	"errors"
	"reflect"
	"testing"
)

// saveExecFns saves the exec function variables and restores them after
// the test.
func saveExecFns(t *testing.T) {
	t.Helper()
	origLookPath := lookPathFn
	origExec := execFn
	t.Cleanup(func() {
		lookPathFn = origLookPath
		execFn = origExec
	})
}

func TestReplaceProcess_NULInProgram_RejectedBeforeLookup(t *testing.T) {
	saveExecFns(t)
	lookPathFn = func(string) (string, error) {
		t.Fatal("lookup must not run for invalid input")
		return "", nil
	}

	err := replaceProcess("e\x00vil", []string{"e\x00vil"})
	if !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestReplaceProcess_NULInArgument_RejectedBeforeLookup(t *testing.T) {
	saveExecFns(t)
	lookPathFn = func(string) (string, error) {
		t.Fatal("lookup must not run for invalid input")
		return "", nil
	}

	err := replaceProcess("echo", []string{"echo", "a\x00b"})
	if !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestReplaceProcess_LookupFailure(t *testing.T) {
	saveExecFns(t)
	notFound := errors.New("executable file not found in $PATH")
	lookPathFn = func(string) (string, error) {
		return "", notFound
	}
	execFn = func(string, []string, []string) error {
		t.Fatal("exec must not run when lookup fails")
		return nil
	}

	err := replaceProcess("no-such-binary", []string{"no-such-binary"})
	if !errors.Is(err, ErrExec) {
		t.Fatalf("expected ErrExec, got %v", err)
	}
	if !errors.Is(err, notFound) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestReplaceProcess_ExecFailure_Terminal(t *testing.T) {
	saveExecFns(t)
	lookPathFn = func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	}

	var gotPath string
	var gotArgv []string
	execCalls := 0
	osErr := errors.New("permission denied")
	execFn = func(argv0 string, argv []string, envv []string) error {
		execCalls++
		gotPath = argv0
		gotArgv = append([]string(nil), argv...)
		return osErr
	}

	err := replaceProcess("tool", []string{"tool", "--flag"})
	if !errors.Is(err, ErrExec) {
		t.Fatalf("expected ErrExec, got %v", err)
	}
	if !errors.Is(err, osErr) {
		t.Fatalf("expected wrapped OS error, got %v", err)
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.Program != "tool" {
		t.Fatalf("ExecError.Program = %q, want %q", execErr.Program, "tool")
	}

	// Never retried.
	if execCalls != 1 {
		t.Fatalf("expected exactly 1 exec attempt, got %d", execCalls)
	}
	if gotPath != "/usr/bin/tool" {
		t.Fatalf("exec path = %q, want resolved path", gotPath)
	}
	if !reflect.DeepEqual(gotArgv, []string{"tool", "--flag"}) {
		t.Fatalf("argv = %v, want passed verbatim", gotArgv)
	}
}
