// Package instance validates and selects the instance name that namespaces
// every Redis key of a serving process.
package instance

import (
	"fmt"
	"regexp"
)

// MaxNameLength is the maximum length for an instance name (DNS-compatible)
const MaxNameLength = 63

// NamePattern is the regex pattern for valid instance names: lowercase
// alphanumeric, hyphens allowed but not at start/end.
var NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks if an instance name is valid according to DNS naming rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// Resolve picks the instance to target: override when set, otherwise
// configured. The result is validated.
func Resolve(override, configured string) (string, error) {
	name := configured
	if override != "" {
		name = override
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
