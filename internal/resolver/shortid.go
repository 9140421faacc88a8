// Package resolver expands abbreviated scoreboard ids.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dyluth/simpleboard/pkg/redisboard"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
const MinShortIDLength = 6

// ResolveScoreboardID resolves a short ID prefix to a full scoreboard id.
// A full id (36 chars, 4 hyphens) is returned as-is once its existence is
// checked. Returns NotFoundError or AmbiguousError when the prefix does not
// select exactly one scoreboard.
func ResolveScoreboardID(ctx context.Context, client *redisboard.Client, shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		if _, err := client.Scoreboard(ctx, shortID); err != nil {
			return "", err
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	ids, err := client.Scoreboards(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to search for scoreboard: %w", err)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, shortID) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no scoreboards matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no scoreboards found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple scoreboards matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d scoreboards", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists the matching ids (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d scoreboards:\n", err.ShortID, len(err.Matches))

	shown := min(len(err.Matches), 10)
	for _, id := range err.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the scoreboard.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// AsAmbiguousError returns err as an AmbiguousError, if it is one.
func AsAmbiguousError(err error) (*AmbiguousError, bool) {
	amb, ok := err.(*AmbiguousError)
	return amb, ok
}
