package config

import (
	"fmt"
	"regexp"
)

// MaxNamespaceLength bounds redis.namespace, which is embedded in every key.
const MaxNamespaceLength = 63

// NamespacePattern allows lowercase alphanumerics with inner hyphens.
var NamespacePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateNamespace checks a Redis key namespace.
func ValidateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("redis.namespace cannot be empty")
	}

	if len(name) > MaxNamespaceLength {
		return fmt.Errorf("redis.namespace too long: %d characters (max: %d)", len(name), MaxNamespaceLength)
	}

	if !NamespacePattern.MatchString(name) {
		return fmt.Errorf("invalid redis.namespace '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
