// Package pathutil provides path helpers for sandbox launch: NUL-byte
// validation of argv material and canonicalization of writable roots.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize resolves a path to its canonical absolute form,
// following symlinks. Every component of the path must exist; a
// non-canonicalizable path is an error because bind mounts built from
// it would silently map the wrong location.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot make %q absolute: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if missing := FindFirstNonExistent(abs); missing != "" {
			return "", fmt.Errorf("pathutil: cannot resolve %q: %q does not exist", path, missing)
		}
		return "", fmt.Errorf("pathutil: cannot resolve %q: %w", path, err)
	}
	return resolved, nil
}

// FindFirstNonExistent returns the first component in a path that does
// not exist. Returns "" if the entire path exists.
func FindFirstNonExistent(path string) string {
	cleaned := filepath.Clean(path)

	// Collect ancestor chain from cleaned up to root/".".
	var chain []string
	cur := cleaned
	for {
		chain = append(chain, cur)
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	// Walk from the root (end of chain) towards the leaf (start of chain).
	// Return the first entry that doesn't exist, or "" if all exist.
	for i := len(chain) - 1; i >= 0; i-- {
		if _, err := os.Stat(chain[i]); err != nil {
			return chain[i]
		}
	}
	return ""
}

// ContainsNullByte returns true if the string contains a null byte.
func ContainsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00')
}
