// Command boxexec confines the current process according to a sandbox
// policy and execs a target command in its place. It is the final
// stage of a coding-agent sandbox launcher: on success it never
// returns, on any failure it prints one diagnostic and exits non-zero.
//
// Usage:
//
//	boxexec --sandbox-policy <policy> [--sandbox-policy-cwd <dir>] -- <command> [args...]
//
// The policy is either a mode name (read-only, workspace-write,
// danger-full-access) or a JSON object.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/boxexec/boxexec"
)

func main() {
	// The trailing command may carry its own flags; stop parsing at the
	// first non-flag argument.
	flag.CommandLine.SetInterspersed(false)

	policyStr := flag.String("sandbox-policy", "",
		"sandbox policy: read-only, workspace-write, danger-full-access, or a JSON object")
	policyCwd := flag.String("sandbox-policy-cwd", "",
		"directory the policy's writable roots are resolved against (defaults to the current directory); it may differ from the cwd of the process to spawn")
	flag.Parse()

	policy, err := boxexec.ParsePolicy(*policyStr)
	if err != nil {
		fatal(err)
	}

	cwd := *policyCwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			fatal(fmt.Errorf("boxexec: cannot determine working directory: %w", err))
		}
	}

	// Run replaces the process image on success; any return is fatal.
	fatal(boxexec.Run(policy, cwd, flag.Args()))
}

// fatal is the single top-level failure handler: one diagnostic on
// stderr, then abnormal termination.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
