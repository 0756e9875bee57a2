//go:build linux

package enforce

import (
	"fmt"

	"github.com/landlock-lsm/go-landlock/landlock"
	llsys "github.com/landlock-lsm/go-landlock/landlock/syscall"
)

// writeAccess is the set of Landlock access rights a writable root is
// granted, and the set the ruleset handles. Read-type rights are
// deliberately absent from both: handling only write-type rights
// leaves read access everywhere untouched.
var writeAccess = landlock.AccessFSSet(
	llsys.AccessFSWriteFile |
		llsys.AccessFSRemoveDir |
		llsys.AccessFSRemoveFile |
		llsys.AccessFSMakeChar |
		llsys.AccessFSMakeDir |
		llsys.AccessFSMakeReg |
		llsys.AccessFSMakeSock |
		llsys.AccessFSMakeFifo |
		llsys.AccessFSMakeBlock |
		llsys.AccessFSMakeSym)

// restrictPathsFn applies a Landlock configuration, overridden in
// tests to avoid irreversibly restricting the test process.
var restrictPathsFn = func(cfg landlock.Config, rules ...landlock.Rule) error {
	return cfg.RestrictPaths(rules...)
}

// RestrictWrites installs a Landlock ruleset on the calling thread
// restricting filesystem write access to exactly the given roots, in
// order. Read access remains unrestricted. An empty root list denies
// all writes.
//
// The restriction is strict, not best-effort: on kernels without
// Landlock support an error is returned so the caller can degrade to
// the bwrap fallback instead of running with silently weakened
// confinement.
func RestrictWrites(writableRoots []string) error {
	cfg, err := landlock.NewConfig(writeAccess)
	if err != nil {
		return fmt.Errorf("enforce: landlock config: %w", err)
	}

	rules := make([]landlock.Rule, 0, len(writableRoots))
	for _, root := range writableRoots {
		rules = append(rules, landlock.PathAccess(writeAccess, root))
	}

	if err := restrictPathsFn(*cfg, rules...); err != nil {
		return fmt.Errorf("enforce: landlock restrict: %w", err)
	}
	return nil
}
