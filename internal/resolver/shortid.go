// Package resolver expands the short product ids shown in tables back into
// full backend ids.
package resolver

import (
	"fmt"
	"strings"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
const MinShortIDLength = 6

// Resolve returns the candidate that id names: an exact match, or the single
// candidate starting with the prefix id. Matching ignores case, since backend
// ids are hex.
func Resolve(id string, candidates []string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("product ID cannot be empty")
	}

	for _, c := range candidates {
		if strings.EqualFold(c, id) {
			return c, nil
		}
	}

	if len(id) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(id))
	}

	prefix := strings.ToLower(id)
	var matches []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), prefix) && !seen[c] {
			seen[c] = true
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: id}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: id, Matches: matches}
	}
}

// NotFoundError indicates no product matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no products found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple products matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d products", e.ShortID, len(e.Matches))
}

// Describe lists the matches (up to 10, then "...and N more") with a hint.
func (e *AmbiguousError) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "'%s' matches %d products:\n", e.ShortID, len(e.Matches))

	shown := min(len(e.Matches), 10)
	for _, m := range e.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	if len(e.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(e.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to identify the product.")
	return b.String()
}
