// Package permissions parses the octal file modes used for files written by
// the command line.
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default permission constants (user-only access for security)
const (
	DefaultFilePerms os.FileMode = 0o600 // Read/write for owner only
	MaxFilePerms     os.FileMode = 0o777
)

// ParseOctalString parses an octal permission string.
// Handles formats like "600", "0600", "0o600". An empty string yields
// DefaultFilePerms.
func ParseOctalString(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFilePerms, nil
	}

	// Remove common prefixes
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		return 0, nil
	}

	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if os.FileMode(val) > MaxFilePerms {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: above %s", s, FormatOctal(MaxFilePerms))
	}

	return os.FileMode(val), nil
}

// FormatOctal formats a permission value as an octal string
func FormatOctal(perm os.FileMode) string {
	return fmt.Sprintf("0%o", uint32(perm.Perm()))
}

// IsGroupOrWorldReadable reports whether anyone but the owner may read a
// file with these permissions.
func IsGroupOrWorldReadable(perm os.FileMode) bool {
	return perm&0o044 != 0
}
