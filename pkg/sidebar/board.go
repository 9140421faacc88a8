// Package sidebar renders an ordered list of lines onto a substrate scoreboard
// and keeps it current with minimal mutations.
//
// # Rendering model
//
// Every line is backed by one team and one invisible entry. The team's prefix
// carries the line text; the entry's score places it. Line i is rendered at
// score top-i, where top is the number of lines at the last full render, so a
// freshly shown board places its first line at the highest score.
//
// Update compares the new lines position by position with the last rendered
// lines and only touches positions whose content changed, plus positions that
// appeared or disappeared. Teams and entries of removed positions are deleted,
// so a shrinking board leaves nothing behind.
//
// A Board is not safe for concurrent use. Drive it from one goroutine, usually
// the scheduler's.
package sidebar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dyluth/simpleboard/internal/identifier"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// ErrNoTitle is returned by Show when the board has no title.
var ErrNoTitle = fmt.Errorf("%w: title cannot be empty", substrate.ErrInvalidState)

// LineSource produces the current lines, top to bottom. It runs on every update.
type LineSource func() []richtext.Component

// Trigger runs tasks periodically. Every returns an id that Cancel accepts.
// internal/scheduler implements it.
type Trigger interface {
	Every(name string, interval time.Duration, task func(ctx context.Context) error) (uint64, error)
	Cancel(id uint64) bool
}

// Board is one sidebar shared by any number of viewers.
type Board struct {
	name    string
	manager substrate.Manager

	title    richtext.Component
	hasTitle bool
	source   LineSource

	lastLines []richtext.Component
	top       int
	viewers   map[uuid.UUID]substrate.Viewer

	scoreboard substrate.Scoreboard
	objective  substrate.Objective

	trigger Trigger
	taskID  uint64
}

// New creates an empty board. name is used as the objective name and must pass
// identifier.ValidateName.
func New(name string, manager substrate.Manager) (*Board, error) {
	if err := identifier.ValidateName(name); err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, fmt.Errorf("%w: substrate manager is required", substrate.ErrInvalidArgument)
	}

	return &Board{
		name:    name,
		manager: manager,
		viewers: make(map[uuid.UUID]substrate.Viewer),
	}, nil
}

// Name returns the internal board name.
func (b *Board) Name() string {
	return b.name
}

// Title returns the title and whether one was set.
func (b *Board) Title() (richtext.Component, bool) {
	return b.title, b.hasTitle
}

// SetTitle sets the title. If the board is already shown the objective's
// display name is updated too.
func (b *Board) SetTitle(ctx context.Context, title richtext.Component) error {
	b.title = title
	b.hasTitle = true

	if b.objective == nil {
		return nil
	}
	if err := b.objective.SetDisplayName(ctx, title); err != nil {
		return fmt.Errorf("failed to update board title: %w", err)
	}
	return nil
}

// SetLineSource sets the function polled on every update.
func (b *Board) SetLineSource(source LineSource) {
	b.source = source
}

// Scoreboard returns the shared scoreboard, or nil before the first Show.
func (b *Board) Scoreboard() substrate.Scoreboard {
	return b.scoreboard
}

// Viewers returns the identities currently shown this board.
func (b *Board) Viewers() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.viewers))
	for id := range b.viewers {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, c uuid.UUID) int {
		return slices.Compare(a[:], c[:])
	})
	return ids
}

// Show binds viewer to the board's scoreboard and performs a full render.
// The scoreboard and its sidebar objective are allocated on the first Show and
// shared by every later viewer.
func (b *Board) Show(ctx context.Context, viewer substrate.Viewer) error {
	if !b.hasTitle {
		return ErrNoTitle
	}

	if b.scoreboard == nil {
		sb, err := b.manager.NewScoreboard(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate scoreboard: %w", err)
		}
		obj, err := sb.RegisterObjective(ctx, b.name, b.title, substrate.SlotSidebar)
		if err != nil {
			return fmt.Errorf("failed to register objective %q: %w", b.name, err)
		}
		b.scoreboard = sb
		b.objective = obj
	}

	if err := b.manager.Bind(ctx, viewer, b.scoreboard); err != nil {
		return fmt.Errorf("failed to bind viewer %s: %w", viewer.ID(), err)
	}
	b.viewers[viewer.ID()] = viewer

	return b.render(ctx, true)
}

// Hide detaches viewer by binding it to a fresh, empty scoreboard. Other
// viewers and the board's teams are not touched.
func (b *Board) Hide(ctx context.Context, viewer substrate.Viewer) error {
	empty, err := b.manager.NewScoreboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate empty scoreboard: %w", err)
	}
	if err := b.manager.Bind(ctx, viewer, empty); err != nil {
		return fmt.Errorf("failed to unbind viewer %s: %w", viewer.ID(), err)
	}
	delete(b.viewers, viewer.ID())
	return nil
}

// Update pulls the current lines and applies only what changed since the
// previous render. It is a no-op without a line source or before the first Show.
func (b *Board) Update(ctx context.Context) error {
	return b.render(ctx, false)
}

func (b *Board) render(ctx context.Context, full bool) error {
	if b.source == nil || b.scoreboard == nil {
		return nil
	}

	current := b.source()

	previous := b.lastLines
	previousTop := b.top
	if full {
		b.top = len(current)
		previous = nil
	}

	for i, line := range current {
		if i < len(previous) && line.Equal(previous[i]) {
			continue
		}
		if err := b.setLine(ctx, line, b.top-i); err != nil {
			return err
		}
	}

	// Scores the previous render used that the new layout no longer covers.
	keep := func(score int) bool {
		pos := b.top - score
		return pos >= 0 && pos < len(current)
	}
	for i := range b.lastLines {
		score := previousTop - i
		if keep(score) {
			continue
		}
		if err := b.removeLine(ctx, score); err != nil {
			return err
		}
	}

	// Deep copy: a source may edit the spans of a line it returned earlier.
	b.lastLines = make([]richtext.Component, len(current))
	for i, line := range current {
		b.lastLines[i] = slices.Clone(line)
	}
	return nil
}

func (b *Board) setLine(ctx context.Context, line richtext.Component, score int) error {
	name := identifier.LineGroup(score)
	entry := identifier.LineEntry(score)

	team, err := b.scoreboard.Team(ctx, name)
	if substrate.IsNotFound(err) {
		team, err = b.scoreboard.RegisterTeam(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("failed to get team %s: %w", name, err)
	}

	if err := team.SetPrefix(ctx, line); err != nil {
		return fmt.Errorf("failed to set line %d: %w", score, err)
	}
	if err := team.AddEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to add entry for line %d: %w", score, err)
	}
	if err := b.objective.SetScore(ctx, entry, score); err != nil {
		return fmt.Errorf("failed to set score %d: %w", score, err)
	}
	return nil
}

func (b *Board) removeLine(ctx context.Context, score int) error {
	if err := b.scoreboard.ResetScores(ctx, identifier.LineEntry(score)); err != nil {
		return fmt.Errorf("failed to reset line %d: %w", score, err)
	}

	team, err := b.scoreboard.Team(ctx, identifier.LineGroup(score))
	if substrate.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get team for line %d: %w", score, err)
	}
	if err := team.Unregister(ctx); err != nil {
		return fmt.Errorf("failed to unregister line %d: %w", score, err)
	}
	return nil
}

// StartPeriodic registers Update with trigger at the given interval. A previous
// registration is cancelled first.
func (b *Board) StartPeriodic(trigger Trigger, interval time.Duration) error {
	b.StopPeriodic()

	id, err := trigger.Every("board:"+b.name, interval, b.Update)
	if err != nil {
		return fmt.Errorf("failed to schedule board %s: %w", b.name, err)
	}
	b.trigger = trigger
	b.taskID = id
	return nil
}

// StopPeriodic cancels the periodic registration, if any.
func (b *Board) StopPeriodic() {
	if b.trigger == nil {
		return
	}
	b.trigger.Cancel(b.taskID)
	b.trigger = nil
	b.taskID = 0
}

// Destroy stops periodic updates, hides every viewer and removes every rendered
// line from the shared scoreboard. The board can be shown again afterwards.
func (b *Board) Destroy(ctx context.Context) error {
	b.StopPeriodic()

	var errs []error
	for _, id := range b.Viewers() {
		if err := b.Hide(ctx, b.viewers[id]); err != nil {
			errs = append(errs, err)
		}
	}

	if b.scoreboard != nil {
		for i := range b.lastLines {
			if err := b.removeLine(ctx, b.top-i); err != nil {
				errs = append(errs, err)
			}
		}
	}
	b.lastLines = nil

	return errors.Join(errs...)
}
