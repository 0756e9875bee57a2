//go:build linux

package enforce

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Offsets into struct seccomp_data.
const (
	seccompDataNrOffset   = 0
	seccompDataArchOffset = 4
	seccompDataArg0Offset = 16
)

// Architecture constants for GOARCH strings.
const (
	archAMD64 = "amd64"
	archARM64 = "arm64"
)

// archSyscalls holds architecture-specific syscall numbers used by the
// network-deny BPF filter.
type archSyscalls struct {
	auditArch     uint32
	sysSocket     uint32
	sysSocketpair uint32
}

// archSyscallsFor returns the audit architecture constant and syscall
// numbers for the given GOARCH string. Returns an error for
// unsupported architectures: an unchecked architecture would let the
// filter be bypassed entirely.
func archSyscallsFor(goarch string) (archSyscalls, error) {
	switch goarch {
	case archAMD64:
		return archSyscalls{
			auditArch:     unix.AUDIT_ARCH_X86_64,
			sysSocket:     41,
			sysSocketpair: 53,
		}, nil
	case archARM64:
		return archSyscalls{
			auditArch:     unix.AUDIT_ARCH_AARCH64,
			sysSocket:     198,
			sysSocketpair: 199,
		}, nil
	default:
		return archSyscalls{}, fmt.Errorf("enforce: unsupported architecture for seccomp: %s", goarch)
	}
}

// archSyscallsFn is a function variable for syscall lookup, allowing
// tests to override it.
var archSyscallsFn = func() (archSyscalls, error) {
	return archSyscallsFor(runtime.GOARCH)
}

// prctlFn is a function variable for the prctl syscall used to apply
// the filter. Tests override this to avoid irreversible process changes.
var prctlFn = unix.Prctl

// buildNetworkFilter constructs the BPF program denying creation of
// network-capable sockets. socket(2) and socketpair(2) with a domain
// other than AF_UNIX fail with EPERM; every other syscall is allowed.
// Denial happens at socket creation because later calls (connect,
// sendto) only carry a file descriptor, whose address family BPF
// cannot inspect.
func buildNetworkFilter(sc archSyscalls) []unix.SockFilter {
	// Instruction layout:
	//   [0]  load arch
	//   [1]  check arch → KILL on mismatch
	//   [2]  load syscall nr
	//   [3]  if socket     → domain check
	//   [4]  if socketpair → domain check
	//   [5]  ALLOW (fall-through)
	//   [6]  load args[0] (socket domain)
	//   [7]  if AF_UNIX → ALLOW
	//   [8]  EPERM
	//   [9]  ALLOW
	//   [10] KILL — architecture mismatch
	const (
		domainIdx = 6
		allowIdx  = 9
		killIdx   = 10
	)

	return []unix.SockFilter{
		{Code: unix.BPF_LD | unix.BPF_W | unix.BPF_ABS, K: seccompDataArchOffset},
		{Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K, Jt: 0, Jf: killIdx - 1 - 1, K: sc.auditArch},
		{Code: unix.BPF_LD | unix.BPF_W | unix.BPF_ABS, K: seccompDataNrOffset},
		{Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K, Jt: domainIdx - 3 - 1, Jf: 0, K: sc.sysSocket},
		{Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K, Jt: domainIdx - 4 - 1, Jf: 0, K: sc.sysSocketpair},
		{Code: unix.BPF_RET | unix.BPF_K, K: unix.SECCOMP_RET_ALLOW},
		{Code: unix.BPF_LD | unix.BPF_W | unix.BPF_ABS, K: seccompDataArg0Offset},
		{Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K, Jt: allowIdx - 7 - 1, Jf: 0, K: unix.AF_UNIX},
		{Code: unix.BPF_RET | unix.BPF_K, K: unix.SECCOMP_RET_ERRNO | uint32(unix.EPERM)},
		{Code: unix.BPF_RET | unix.BPF_K, K: unix.SECCOMP_RET_ALLOW},
		{Code: unix.BPF_RET | unix.BPF_K, K: unix.SECCOMP_RET_KILL_THREAD},
	}
}

// DenyNetwork installs a seccomp BPF filter on the calling thread that
// blocks network syscalls: socket and socketpair fail with EPERM for
// every domain except AF_UNIX. It must run on the exact thread that
// will perform the process-replacing exec, before any other thread is
// created from it.
//
// There is no user-space fallback for this filter; a failure means the
// kernel facility itself is unusable and the caller must abort.
func DenyNetwork() error {
	sc, err := archSyscallsFn()
	if err != nil {
		return err
	}

	filter := buildNetworkFilter(sc)

	// Required so an unprivileged process may install a filter.
	if err := prctlFn(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("enforce: prctl(NO_NEW_PRIVS): %w", err)
	}

	prog := unix.SockFprog{
		Len:    uint16(len(filter)), //nolint:gosec // filter length is bounded by seccomp BPF limits
		Filter: &filter[0],
	}
	if err := prctlFn(unix.PR_SET_SECCOMP, unix.SECCOMP_MODE_FILTER, uintptr(unsafe.Pointer(&prog)), 0, 0); err != nil {
		return fmt.Errorf("enforce: prctl(SET_SECCOMP): %w", err)
	}

	return nil
}
