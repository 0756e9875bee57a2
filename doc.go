// Package boxexec is the final stage of a sandbox launcher for
// coding-agent CLIs. Given a resolved permission policy and a command
// line, it confines the process's network and filesystem capabilities
// at the kernel level (seccomp BPF, Landlock) and then irreversibly
// replaces the process image with the target command.
//
// Key properties:
//   - One-shot and synchronous: Run either never returns (the process
//     image has been replaced) or returns a terminal error.
//   - Fail-closed: a failed network filter is always fatal; a failed
//     filesystem restriction degrades to a bwrap-wrapped execution
//     only when bwrap is available, and is fatal otherwise.
//   - Thread-pinned: seccomp and Landlock attach to the calling
//     thread, so the entire install-then-exec sequence runs on one
//     locked OS thread.
//
// Basic usage:
//
//	policy := boxexec.WorkspaceWritePolicy("/srv/build")
//	err := boxexec.Run(policy, cwd, []string{"cargo", "build"})
//	// Reached only on failure.
//	log.Fatal(err)
package boxexec
