package boxexec

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/boxexec/boxexec/internal/pathutil"
)

// bwrapProgram is the name of the namespace-isolation helper binary,
// located via PATH lookup.
const bwrapProgram = "bwrap"

// bwrapPrefix is the fixed leading token sequence of every bwrap
// invocation: unshare all namespaces, re-share the network namespace
// (network policy, if restrictive, was already enforced by the seccomp
// filter on this thread), read-only bind the root filesystem onto
// itself, and bind the device directory.
var bwrapPrefix = []string{
	"--unshare-all",
	"--share-net",
	"--ro-bind", "/", "/",
	"--dev", "/dev",
}

// lookPathFn locates binaries on the search path, overridden in tests.
var lookPathFn = exec.LookPath

// detectBwrap reports whether the bwrap helper is discoverable on the
// search path.
func detectBwrap() bool {
	_, err := lookPathFn(bwrapProgram)
	return err == nil
}

// bwrapAvailable memoizes bwrap discoverability for the lifetime of the
// process. First computation wins; the search path is assumed stable
// for one run.
var bwrapAvailable = sync.OnceValue(detectBwrap)

// BwrapAvailable reports whether the bwrap fallback helper is available
// on this system. The result is computed at most once per process.
func BwrapAvailable() bool {
	return bwrapAvailable()
}

// buildBwrapArgv constructs the argv for a bwrap-wrapped execution:
// the fixed prefix, one read-write bind pair per writable root mapping
// its canonical path to itself in input order, and finally the
// original command tokens unmodified. An empty root list yields only
// the prefix and the command.
//
// A root that cannot be canonicalized (missing or inaccessible) is an
// input error; the caller must abort before any execution attempt.
func buildBwrapArgv(writableRoots []string, command []string) ([]string, error) {
	argv := make([]string, 0, len(bwrapPrefix)+3*len(writableRoots)+len(command))
	argv = append(argv, bwrapPrefix...)

	for _, root := range writableRoots {
		canonical, err := pathutil.Canonicalize(root)
		if err != nil {
			return nil, &InputError{Reason: fmt.Sprintf("writable root %q: %v", root, err)}
		}
		argv = append(argv, "--bind", canonical, canonical)
	}

	argv = append(argv, command...)
	return argv, nil
}
