// Package substrate defines the presentation substrate the boards and prefixes
// are rendered onto.
//
// # Overview
//
// The substrate can only express state through two primitives:
//
//   - Scores: an Objective maps named entries to integer scores. Higher scores
//     render nearer the top of a sidebar.
//   - Teams: a Scoreboard owns named teams. A team carries a prefix label, a
//     colour and a handful of display options. An entry belongs to at most one
//     team of a scoreboard at a time; adding it to a team moves it out of any
//     other team.
//
// Viewers are bound to exactly one scoreboard at a time. Binding a viewer to a
// new scoreboard replaces the previous binding.
//
// Implementations live in sub-packages: memory (in-process, with a mutation
// journal) and redisboard (Redis-backed, publishing mutations for a transport).
//
// Implementations are not required to be safe for concurrent mutation of the
// same scoreboard; callers drive all mutations from one goroutine.
package substrate

import (
	"context"

	"github.com/dyluth/simpleboard/pkg/richtext"
)

// DisplaySlot names where an objective is displayed to a viewer.
type DisplaySlot string

const (
	// SlotSidebar shows the objective as the right-hand sidebar.
	SlotSidebar DisplaySlot = "sidebar"

	// SlotPlayerList shows the objective in the viewer list.
	SlotPlayerList DisplaySlot = "player_list"

	// SlotBelowName shows the objective below viewer name tags.
	SlotBelowName DisplaySlot = "below_name"
)

// Manager allocates scoreboards and tracks which scoreboard each viewer sees.
type Manager interface {
	// NewScoreboard allocates a fresh, empty scoreboard.
	NewScoreboard(ctx context.Context) (Scoreboard, error)

	// Bind makes viewer see sb, replacing any previous binding.
	Bind(ctx context.Context, viewer Viewer, sb Scoreboard) error

	// ScoreboardOf returns the scoreboard the viewer currently sees.
	// Returns ErrNotFound if the viewer was never bound.
	ScoreboardOf(ctx context.Context, viewer Viewer) (Scoreboard, error)
}

// Scoreboard is a namespace of objectives and teams.
type Scoreboard interface {
	// ID returns a stable identifier for this scoreboard.
	ID() string

	// RegisterObjective creates a new objective shown in slot.
	// Returns ErrAlreadyExists if an objective with this name exists.
	RegisterObjective(ctx context.Context, name string, displayName richtext.Component, slot DisplaySlot) (Objective, error)

	// Objective returns a registered objective, or ErrNotFound.
	Objective(ctx context.Context, name string) (Objective, error)

	// Team returns a registered team, or ErrNotFound.
	Team(ctx context.Context, name string) (Team, error)

	// RegisterTeam creates a new, empty team.
	// Returns ErrAlreadyExists if a team with this name exists.
	RegisterTeam(ctx context.Context, name string) (Team, error)

	// Teams lists the names of all registered teams.
	Teams(ctx context.Context) ([]string, error)

	// ResetScores removes entry from every objective of the scoreboard.
	// Resetting an entry without scores is a no-op.
	ResetScores(ctx context.Context, entry string) error
}

// Objective maps entries to scores.
type Objective interface {
	Name() string
	SetDisplayName(ctx context.Context, displayName richtext.Component) error
	SetScore(ctx context.Context, entry string, score int) error
}

// Team is a named group owning a label, a colour and display options.
type Team interface {
	Name() string
	SetPrefix(ctx context.Context, prefix richtext.Component) error
	SetColor(ctx context.Context, color richtext.Color) error
	SetOption(ctx context.Context, option Option, status OptionStatus) error
	Entries(ctx context.Context) ([]string, error)

	// AddEntry adds entry to the team, removing it from any other team of the
	// same scoreboard.
	AddEntry(ctx context.Context, entry string) error
	RemoveEntry(ctx context.Context, entry string) error

	// Unregister deletes the team from its scoreboard. Further calls on the
	// team return ErrInvalidState.
	Unregister(ctx context.Context) error
}
