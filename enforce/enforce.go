// Package enforce installs kernel-level confinement on the calling
// thread: a seccomp BPF filter that denies creation of network-capable
// sockets, and a Landlock ruleset that restricts filesystem writes to
// a declared set of roots.
//
// Both mechanisms attach to the calling thread only. Callers must lock
// the goroutine to its OS thread before the first install and keep it
// locked through the process-replacing exec; an unpinned goroutine
// would leave other threads unconfined.
//
// Read access is deliberately left unrestricted by RestrictWrites.
package enforce

import "errors"

// ErrUnsupported indicates the current platform cannot install the
// requested confinement mechanism.
var ErrUnsupported = errors.New("enforce: not supported on this platform")
