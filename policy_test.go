package boxexec

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func TestParsePolicy_ModeNames(t *testing.T) {
	tests := []struct {
		in   string
		want PolicyMode
	}{
		{"read-only", ModeReadOnly},
		{"workspace-write", ModeWorkspaceWrite},
		{"danger-full-access", ModeDangerFullAccess},
		{"  read-only  ", ModeReadOnly},
	}
	for _, tt := range tests {
		p, err := ParsePolicy(tt.in)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", tt.in, err)
		}
		if p.Mode != tt.want {
			t.Errorf("ParsePolicy(%q).Mode = %v, want %v", tt.in, p.Mode, tt.want)
		}
	}
}

func TestParsePolicy_JSON(t *testing.T) {
	in := `{"mode":"workspace-write","writable_roots":["/srv/build"],"network_access":true,"exclude_slash_tmp":true}`
	p, err := ParsePolicy(in)
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if p.Mode != ModeWorkspaceWrite {
		t.Fatalf("Mode = %v, want workspace-write", p.Mode)
	}
	if !reflect.DeepEqual(p.WritableRoots, []string{"/srv/build"}) {
		t.Fatalf("WritableRoots = %v", p.WritableRoots)
	}
	if !p.NetworkAccess || !p.ExcludeSlashTmp || p.ExcludeTmpdirEnvVar {
		t.Fatalf("flags = %+v", p)
	}
}

func TestParsePolicy_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "full-access", `{"mode":"nope"}`, `{"mode":`} {
		if _, err := ParsePolicy(in); !errors.Is(err, ErrInput) {
			t.Errorf("ParsePolicy(%q): expected ErrInput, got %v", in, err)
		}
	}
}

func TestPolicyMode_JSONRoundTrip(t *testing.T) {
	for _, mode := range []PolicyMode{ModeReadOnly, ModeWorkspaceWrite, ModeDangerFullAccess} {
		data, err := json.Marshal(mode)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", mode, err)
		}
		var got PolicyMode
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != mode {
			t.Errorf("round trip: got %v, want %v", got, mode)
		}
	}

	if _, err := json.Marshal(PolicyMode(42)); err == nil {
		t.Error("expected error marshalling invalid mode")
	}
}

// ---------------------------------------------------------------------------
// Access queries
// ---------------------------------------------------------------------------

func TestPolicy_AccessQueries(t *testing.T) {
	workspaceNet := WorkspaceWritePolicy()
	workspaceNet.NetworkAccess = true

	tests := []struct {
		name        string
		policy      *SandboxPolicy
		fullNetwork bool
		fullDisk    bool
	}{
		{"read-only", ReadOnlyPolicy(), false, false},
		{"workspace-write", WorkspaceWritePolicy(), false, false},
		{"workspace-write+network", workspaceNet, true, false},
		{"danger-full-access", DangerFullAccessPolicy(), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.HasFullNetworkAccess(); got != tt.fullNetwork {
				t.Errorf("HasFullNetworkAccess() = %v, want %v", got, tt.fullNetwork)
			}
			if got := tt.policy.HasFullDiskWriteAccess(); got != tt.fullDisk {
				t.Errorf("HasFullDiskWriteAccess() = %v, want %v", got, tt.fullDisk)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Writable-root resolution
// ---------------------------------------------------------------------------

func TestWritableRootsWithCwd_NonWorkspaceModes(t *testing.T) {
	if roots := ReadOnlyPolicy().WritableRootsWithCwd("/work"); roots != nil {
		t.Fatalf("read-only roots = %v, want none", roots)
	}
	if roots := DangerFullAccessPolicy().WritableRootsWithCwd("/work"); roots != nil {
		t.Fatalf("danger-full-access roots = %v, want none", roots)
	}
}

func TestWritableRootsWithCwd_OrderPreserved(t *testing.T) {
	t.Setenv("TMPDIR", "/custom/tmpdir")

	p := WorkspaceWritePolicy("/first", "/second")
	roots := p.WritableRootsWithCwd("/work")

	want := []string{"/first", "/second"}
	if info, err := os.Stat("/tmp"); err == nil && info.IsDir() {
		want = append(want, "/tmp")
	}
	want = append(want, "/custom/tmpdir", "/work")

	if !reflect.DeepEqual(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
}

func TestWritableRootsWithCwd_Exclusions(t *testing.T) {
	t.Setenv("TMPDIR", "/custom/tmpdir")

	p := WorkspaceWritePolicy("/extra")
	p.ExcludeSlashTmp = true
	p.ExcludeTmpdirEnvVar = true

	roots := p.WritableRootsWithCwd("/work")
	want := []string{"/extra", "/work"}
	if !reflect.DeepEqual(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
}

func TestWritableRootsWithCwd_EmptyTmpdirSkipped(t *testing.T) {
	t.Setenv("TMPDIR", "")

	p := WorkspaceWritePolicy()
	p.ExcludeSlashTmp = true

	roots := p.WritableRootsWithCwd("/work")
	want := []string{"/work"}
	if !reflect.DeepEqual(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  *SandboxPolicy
		wantErr bool
	}{
		{"valid read-only", ReadOnlyPolicy(), false},
		{"valid workspace", WorkspaceWritePolicy("/srv"), false},
		{"empty root", WorkspaceWritePolicy(""), true},
		{"NUL root", WorkspaceWritePolicy("/a\x00b"), true},
		{"invalid mode", &SandboxPolicy{Mode: PolicyMode(9)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr && !errors.Is(err, ErrInput) {
				t.Fatalf("expected ErrInput, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPolicyModeString(t *testing.T) {
	tests := []struct {
		m    PolicyMode
		want string
	}{
		{ModeReadOnly, "read-only"},
		{ModeWorkspaceWrite, "workspace-write"},
		{ModeDangerFullAccess, "danger-full-access"},
		{PolicyMode(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("PolicyMode(%d).String() = %q, want %q", int(tt.m), got, tt.want)
		}
	}
}
