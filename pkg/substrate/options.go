package substrate

import (
	"fmt"
	"strings"
)

// Option is a team display option.
type Option string

const (
	// OptionNameTagVisibility controls who can see the name tags of team members.
	OptionNameTagVisibility Option = "name_tag_visibility"

	// OptionDeathMessageVisibility controls who sees death messages of team members.
	OptionDeathMessageVisibility Option = "death_message_visibility"

	// OptionCollisionRule controls which entities team members collide with.
	OptionCollisionRule Option = "collision_rule"
)

// OptionStatus is the value of a team Option.
type OptionStatus string

const (
	StatusAlways        OptionStatus = "always"
	StatusNever         OptionStatus = "never"
	StatusForOtherTeams OptionStatus = "for_other_teams"
	StatusForOwnTeam    OptionStatus = "for_own_team"
)

// ParseOption resolves an option name (case-insensitive).
func ParseOption(name string) (Option, error) {
	switch o := Option(strings.ToLower(name)); o {
	case OptionNameTagVisibility, OptionDeathMessageVisibility, OptionCollisionRule:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown team option %q (must be 'name_tag_visibility', 'death_message_visibility' or 'collision_rule')", ErrInvalidArgument, name)
	}
}

// ParseOptionStatus resolves an option status (case-insensitive).
func ParseOptionStatus(name string) (OptionStatus, error) {
	switch s := OptionStatus(strings.ToLower(name)); s {
	case StatusAlways, StatusNever, StatusForOtherTeams, StatusForOwnTeam:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown option status %q (must be 'always', 'never', 'for_other_teams' or 'for_own_team')", ErrInvalidArgument, name)
	}
}
