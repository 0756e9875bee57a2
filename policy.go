package boxexec

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/boxexec/boxexec/internal/pathutil"
)

// PolicyMode determines the overall access level granted to the
// sandboxed command.
type PolicyMode int

const (
	// ModeReadOnly denies all filesystem writes and all network access.
	ModeReadOnly PolicyMode = iota

	// ModeWorkspaceWrite permits writes under the resolved writable
	// roots; network access depends on the policy's NetworkAccess flag.
	ModeWorkspaceWrite

	// ModeDangerFullAccess disables all confinement. The command runs
	// with the full access of the launching process.
	ModeDangerFullAccess
)

// Policy mode names as they appear on the wire and on the CLI.
const (
	modeReadOnlyStr         = "read-only"
	modeWorkspaceWriteStr   = "workspace-write"
	modeDangerFullAccessStr = "danger-full-access"
)

const unknownStr = "unknown"

// String returns the string representation of a PolicyMode.
func (m PolicyMode) String() string {
	switch m {
	case ModeReadOnly:
		return modeReadOnlyStr
	case ModeWorkspaceWrite:
		return modeWorkspaceWriteStr
	case ModeDangerFullAccess:
		return modeDangerFullAccessStr
	default:
		return unknownStr
	}
}

// MarshalJSON encodes the mode as its string name.
func (m PolicyMode) MarshalJSON() ([]byte, error) {
	if m < ModeReadOnly || m > ModeDangerFullAccess {
		return nil, fmt.Errorf("boxexec: invalid policy mode %d", int(m))
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode from its string name.
func (m *PolicyMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := parsePolicyMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func parsePolicyMode(s string) (PolicyMode, error) {
	switch s {
	case modeReadOnlyStr:
		return ModeReadOnly, nil
	case modeWorkspaceWriteStr:
		return ModeWorkspaceWrite, nil
	case modeDangerFullAccessStr:
		return ModeDangerFullAccess, nil
	default:
		return 0, fmt.Errorf("boxexec: unknown policy mode %q", s)
	}
}

// SandboxPolicy describes the permissions granted to the launched
// command. It is supplied once at entry and is immutable for the run.
type SandboxPolicy struct {
	// Mode is the overall access level.
	Mode PolicyMode `json:"mode"`

	// WritableRoots lists extra directories the command may write to.
	// Only meaningful for ModeWorkspaceWrite.
	WritableRoots []string `json:"writable_roots,omitempty"`

	// NetworkAccess permits unrestricted network access. Only
	// meaningful for ModeWorkspaceWrite; the other modes imply it.
	NetworkAccess bool `json:"network_access,omitempty"`

	// ExcludeTmpdirEnvVar prevents $TMPDIR from being added to the
	// writable roots.
	ExcludeTmpdirEnvVar bool `json:"exclude_tmpdir_env_var,omitempty"`

	// ExcludeSlashTmp prevents /tmp from being added to the writable
	// roots.
	ExcludeSlashTmp bool `json:"exclude_slash_tmp,omitempty"`
}

// ReadOnlyPolicy returns a policy that denies all writes and all
// network access.
func ReadOnlyPolicy() *SandboxPolicy {
	return &SandboxPolicy{Mode: ModeReadOnly}
}

// WorkspaceWritePolicy returns a policy that permits writes under the
// working directory, the temporary directories, and the given extra
// roots. Network access is denied.
func WorkspaceWritePolicy(writableRoots ...string) *SandboxPolicy {
	return &SandboxPolicy{
		Mode:          ModeWorkspaceWrite,
		WritableRoots: append([]string(nil), writableRoots...),
	}
}

// DangerFullAccessPolicy returns a policy with no confinement at all.
func DangerFullAccessPolicy() *SandboxPolicy {
	return &SandboxPolicy{Mode: ModeDangerFullAccess}
}

// ParsePolicy parses a serialized policy as passed on the CLI. The
// value is either one of the mode names ("read-only",
// "workspace-write", "danger-full-access") or a JSON object in
// SandboxPolicy's wire format.
func ParsePolicy(s string) (*SandboxPolicy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &InputError{Reason: "no sandbox policy specified"}
	}

	if strings.HasPrefix(s, "{") {
		var p SandboxPolicy
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, &InputError{Reason: fmt.Sprintf("cannot parse sandbox policy: %v", err)}
		}
		return &p, nil
	}

	mode, err := parsePolicyMode(s)
	if err != nil {
		return nil, &InputError{Reason: fmt.Sprintf("cannot parse sandbox policy: %v", err)}
	}
	return &SandboxPolicy{Mode: mode}, nil
}

// HasFullNetworkAccess reports whether the policy places no
// restriction on network access.
func (p *SandboxPolicy) HasFullNetworkAccess() bool {
	switch p.Mode {
	case ModeDangerFullAccess:
		return true
	case ModeWorkspaceWrite:
		return p.NetworkAccess
	default:
		return false
	}
}

// HasFullDiskWriteAccess reports whether the policy places no
// restriction on filesystem writes.
func (p *SandboxPolicy) HasFullDiskWriteAccess() bool {
	return p.Mode == ModeDangerFullAccess
}

// WritableRootsWithCwd resolves the ordered list of writable roots for
// the given working directory: the policy's explicit roots in declared
// order, then /tmp (unless excluded), then $TMPDIR (unless excluded or
// unset), then cwd. Later steps rely on this order being stable so the
// resulting bind lists are reproducible.
func (p *SandboxPolicy) WritableRootsWithCwd(cwd string) []string {
	if p.Mode != ModeWorkspaceWrite {
		return nil
	}

	roots := append([]string(nil), p.WritableRoots...)

	if !p.ExcludeSlashTmp && runtime.GOOS != "windows" {
		if info, err := os.Stat("/tmp"); err == nil && info.IsDir() {
			roots = append(roots, "/tmp")
		}
	}
	if !p.ExcludeTmpdirEnvVar {
		if tmpdir := os.Getenv("TMPDIR"); tmpdir != "" {
			roots = append(roots, tmpdir)
		}
	}

	roots = append(roots, cwd)
	return roots
}

// Validate checks the policy for malformed fields. The returned error
// wraps ErrInput.
func (p *SandboxPolicy) Validate() error {
	if p.Mode < ModeReadOnly || p.Mode > ModeDangerFullAccess {
		return &InputError{Reason: fmt.Sprintf("invalid policy mode %d", int(p.Mode))}
	}
	for i, root := range p.WritableRoots {
		if root == "" {
			return &InputError{Reason: fmt.Sprintf("writable root %d must not be empty", i)}
		}
		if pathutil.ContainsNullByte(root) {
			return &InputError{Reason: fmt.Sprintf("writable root %d must not contain NUL bytes", i)}
		}
	}
	return nil
}
