package boxexec

import (
	"log/slog"
	"runtime"

	"github.com/boxexec/boxexec/enforce"
)

// Decision is the enforcement strategy chosen for a launch. It is
// decided once and never revisited.
type Decision int

const (
	// DirectExecute executes the target command directly; any
	// confinement has been installed natively on the calling thread.
	DirectExecute Decision = iota

	// WrappedExecute executes the target command through the bwrap
	// namespace-isolation helper because native filesystem confinement
	// was unavailable.
	WrappedExecute
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DirectExecute:
		return "direct"
	case WrappedExecute:
		return "wrapped"
	default:
		return unknownStr
	}
}

// Launcher confines the current process according to a sandbox policy
// and then replaces its image with a target command. The zero value is
// not usable; call NewLauncher.
//
// A Launcher is single-use and fully synchronous. Seccomp and Landlock
// attach to the calling thread only, so Run pins its goroutine to the
// OS thread before the first installer call and performs the exec on
// that same thread; no work is handed to another goroutine after
// enforcement is installed.
type Launcher struct {
	// Installer and discovery functions default to the real
	// implementations and are replaced in tests.
	denyNetwork    func() error
	restrictWrites func(writableRoots []string) error
	bwrapAvailable func() bool
	exec           func(program string, argv []string) error

	logger *slog.Logger
}

// NewLauncher creates a Launcher using the native enforcement
// installers and the memoized bwrap availability check. If logger is
// nil, slog.Default() is used.
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		denyNetwork:    enforce.DenyNetwork,
		restrictWrites: enforce.RestrictWrites,
		bwrapAvailable: BwrapAvailable,
		exec:           replaceProcess,
		logger:         logger,
	}
}

// Run is a convenience function that launches command under policy
// with a default Launcher. See Launcher.Run.
func Run(policy *SandboxPolicy, cwd string, command []string) error {
	return NewLauncher(nil).Run(policy, cwd, command)
}

// Run confines the process per policy and replaces its image with
// command. cwd is the working directory the policy's writable roots
// are resolved against; it may differ from the process's own working
// directory.
//
// On success Run never returns: the process image, including this
// call stack, has been replaced by the target program. Any returned
// error is terminal and the caller must exit abnormally. Nothing is
// retried.
func (l *Launcher) Run(policy *SandboxPolicy, cwd string, command []string) error {
	if len(command) == 0 {
		return &InputError{Reason: "no command specified to execute"}
	}
	if policy == nil {
		return &InputError{Reason: "no sandbox policy specified"}
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	// Both enforcement mechanisms are thread-scoped, and the exec must
	// happen on the thread that installed them. Pin now and never
	// unpin: the process either execs or exits.
	runtime.LockOSThread()

	if !policy.HasFullNetworkAccess() {
		// No fallback exists for the network filter: a failure means
		// the kernel facility itself is unusable.
		if err := l.denyNetwork(); err != nil {
			return &NetworkEnforcementError{Err: err}
		}
		l.logger.Debug("network filter installed")
	}

	decision := DirectExecute
	var writableRoots []string
	if !policy.HasFullDiskWriteAccess() {
		writableRoots = policy.WritableRootsWithCwd(cwd)
		if err := l.restrictWrites(writableRoots); err != nil {
			if !l.bwrapAvailable() {
				return &FilesystemEnforcementError{Err: err}
			}
			l.logger.Debug("native filesystem enforcement unavailable, falling back to bwrap",
				"err", err)
			decision = WrappedExecute
		}
	}

	if decision == WrappedExecute {
		argv, err := buildBwrapArgv(writableRoots, command)
		if err != nil {
			return err
		}
		l.logger.Debug("executing wrapped command", "decision", decision, "program", bwrapProgram)
		return l.exec(bwrapProgram, argv)
	}

	l.logger.Debug("executing command", "decision", decision, "program", command[0])
	return l.exec(command[0], command)
}
