//go:build !linux

package enforce

// DenyNetwork reports that seccomp network filtering is unavailable on
// this platform. The caller treats this as a fatal enforcement failure.
func DenyNetwork() error {
	return ErrUnsupported
}

// RestrictWrites reports that Landlock filesystem confinement is
// unavailable on this platform. The caller may still degrade to the
// bwrap fallback if the helper is present.
func RestrictWrites(_ []string) error {
	return ErrUnsupported
}
