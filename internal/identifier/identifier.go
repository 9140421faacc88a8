// Package identifier derives the short, deterministic names the substrate
// needs for board lines and viewer ordering groups.
//
// Every name fits in MaxLength characters. Names are a type tag, a number and
// (for per-viewer names) an identity fragment; when a name is too long only the
// identity fragment is truncated, so the tag and the number, which carry the
// ordering, always survive.
package identifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dyluth/simpleboard/pkg/substrate"
)

const (
	// MaxLength is the longest team or objective name the substrate accepts.
	MaxLength = 16

	// LineGroupTag prefixes the team backing a board line.
	LineGroupTag = "line_"

	// ViewerGroupTag prefixes a viewer's ordering team.
	ViewerGroupTag = "t"

	// formatCode starts an invisible formatting code when rendered.
	formatCode = "§"
)

// NamePattern matches valid objective names: lowercase alphanumeric, '_' and '-'.
var NamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Compose concatenates tag, number and identity and truncates the result to max.
// Only identity is ever truncated. Returns an error wrapping
// substrate.ErrInvalidArgument if tag and number alone exceed max.
func Compose(tag string, number int, identity string, max int) (string, error) {
	head := tag + strconv.Itoa(number)
	if len(head) > max {
		return "", fmt.Errorf("%w: identifier %q exceeds %d characters before identity", substrate.ErrInvalidArgument, head, max)
	}

	name := head + identity
	if len(name) > max {
		name = name[:max]
	}
	return name, nil
}

// ViewerGroup returns the name of the ordering team for a viewer with the given
// priority. The priority is written in decimal directly after the tag, so team
// names sort by the lexicographic order of the priority text ("10" < "9" < "91").
func ViewerGroup(priority int, id uuid.UUID) (string, error) {
	return Compose(ViewerGroupTag, priority, strings.ReplaceAll(id.String(), "-", ""), MaxLength)
}

// LineGroup returns the team name backing the board line with the given score.
func LineGroup(score int) string {
	return LineGroupTag + strconv.Itoa(score)
}

// LineEntry returns the entry key for the board line with the given score.
// Every hex digit of the score is preceded by a formatting code, so the entry
// renders as nothing if a client ever displays it. Distinct scores give
// distinct entries.
func LineEntry(score int) string {
	hex := strconv.FormatUint(uint64(uint32(score)), 16)

	var b strings.Builder
	b.Grow(len(hex) * (len(formatCode) + 1))
	for _, digit := range hex {
		b.WriteString(formatCode)
		b.WriteRune(digit)
	}
	return b.String()
}

// ValidateName checks that name is usable as an objective name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: board name cannot be empty", substrate.ErrInvalidArgument)
	}

	if len(name) > MaxLength {
		return fmt.Errorf("%w: board name too long: %d characters (max: %d)", substrate.ErrInvalidArgument, len(name), MaxLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid board name '%s': must be lowercase alphanumeric, '_' or '-'", substrate.ErrInvalidArgument, name)
	}

	return nil
}
