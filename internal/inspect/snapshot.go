// Package inspect reads scoreboards back out of Redis for the inspect command.
package inspect

import (
	"context"
	"fmt"
	"sort"

	"github.com/dyluth/simpleboard/internal/printer"
	"github.com/dyluth/simpleboard/pkg/redisboard"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Snapshot is the stored state of one scoreboard.
type Snapshot struct {
	ID         string              `json:"id"`
	Objectives []ObjectiveSnapshot `json:"objectives"`
	Teams      []TeamSnapshot      `json:"teams"`
}

// ObjectiveSnapshot is one objective with its scores, highest first.
type ObjectiveSnapshot struct {
	Name   string                   `json:"name"`
	Title  richtext.Component       `json:"title"`
	Slot   substrate.DisplaySlot    `json:"slot"`
	Scores []redisboard.ScoredEntry `json:"scores"`
}

// TeamSnapshot is one team with its members.
type TeamSnapshot struct {
	Name    string                                      `json:"name"`
	Prefix  richtext.Component                          `json:"prefix"`
	Color   richtext.Color                              `json:"color"`
	Options map[substrate.Option]substrate.OptionStatus `json:"options,omitempty"`
	Entries []string                                    `json:"entries"`
}

// Take reads the scoreboard with the given id.
func Take(ctx context.Context, client *redisboard.Client, id string) (*Snapshot, error) {
	sb, err := client.Scoreboard(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{ID: id, Objectives: []ObjectiveSnapshot{}, Teams: []TeamSnapshot{}}

	objectives, err := sb.Objectives(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range objectives {
		raw, err := sb.Objective(ctx, name)
		if err != nil {
			return nil, err
		}
		obj := raw.(*redisboard.Objective)

		title, err := obj.DisplayName(ctx)
		if err != nil {
			return nil, err
		}
		slot, err := obj.Slot(ctx)
		if err != nil {
			return nil, err
		}
		scores, err := obj.Scores(ctx)
		if err != nil {
			return nil, err
		}
		snap.Objectives = append(snap.Objectives, ObjectiveSnapshot{Name: name, Title: title, Slot: slot, Scores: scores})
	}

	teams, err := sb.Teams(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range teams {
		raw, err := sb.Team(ctx, name)
		if err != nil {
			return nil, err
		}
		team := raw.(*redisboard.Team)

		state, err := team.State(ctx)
		if err != nil {
			return nil, err
		}
		entries, err := team.Entries(ctx)
		if err != nil {
			return nil, err
		}
		snap.Teams = append(snap.Teams, TeamSnapshot{
			Name:    name,
			Prefix:  state.Prefix,
			Color:   state.Color,
			Options: state.Options,
			Entries: entries,
		})
	}

	return snap, nil
}

// TakeAll reads every scoreboard of the client's instance, sorted by id.
func TakeAll(ctx context.Context, client *redisboard.Client) ([]*Snapshot, error) {
	ids, err := client.Scoreboards(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	snaps := make([]*Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := Take(ctx, client, id)
		if err != nil {
			return nil, fmt.Errorf("scoreboard %s: %w", id, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Sidebar returns the sidebar objective and its rows as a viewer would see
// them: each entry is replaced by the prefix of the team holding it.
func (s *Snapshot) Sidebar() (*ObjectiveSnapshot, []printer.SidebarLine, bool) {
	var sidebar *ObjectiveSnapshot
	for i := range s.Objectives {
		if s.Objectives[i].Slot == substrate.SlotSidebar {
			sidebar = &s.Objectives[i]
			break
		}
	}
	if sidebar == nil {
		return nil, nil, false
	}

	labels := make(map[string]richtext.Component)
	for _, team := range s.Teams {
		for _, entry := range team.Entries {
			labels[entry] = team.Prefix
		}
	}

	lines := make([]printer.SidebarLine, 0, len(sidebar.Scores))
	for _, score := range sidebar.Scores {
		text, ok := labels[score.Entry]
		if !ok {
			text = richtext.Plain(score.Entry)
		}
		lines = append(lines, printer.SidebarLine{Text: text, Score: score.Score})
	}
	return sidebar, lines, true
}
