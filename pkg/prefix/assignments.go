package prefix

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dyluth/simpleboard/internal/identifier"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// ErrNoAssignment is returned when a viewer's team is refreshed before a
// definition was assigned to it.
var ErrNoAssignment = fmt.Errorf("%w: viewer prefix cannot be empty, assign a prefix first", substrate.ErrInvalidState)

// labelSeparator separates the prefix label from the viewer name.
var labelSeparator = richtext.Plain(" ")

// Assignments maps viewers to their prefix definition and keeps every online
// viewer's ordering team in line with it.
//
// Assignments are kept until Clear is called; a viewer disconnecting does not
// remove its assignment.
type Assignments struct {
	manager   substrate.Manager
	directory substrate.Directory

	mu       sync.RWMutex
	assigned map[uuid.UUID]*Definition
	applied  map[uuid.UUID]appliedTeam
}

// appliedTeam is the last team written for a viewer and the scoreboard holding it.
type appliedTeam struct {
	scoreboard substrate.Scoreboard
	name       string
}

// NewAssignments creates an empty table.
func NewAssignments(manager substrate.Manager, directory substrate.Directory) *Assignments {
	return &Assignments{
		manager:   manager,
		directory: directory,
		assigned:  make(map[uuid.UUID]*Definition),
		applied:   make(map[uuid.UUID]appliedTeam),
	}
}

// Assign stores def for viewer, then refreshes every online viewer.
//
// The whole viewer list is refreshed, not just viewer, since team names encode
// the relative order of all viewers.
// TODO: refresh only the viewers whose team name sorts differently after the change.
func (a *Assignments) Assign(ctx context.Context, viewer substrate.Viewer, def *Definition) error {
	if viewer == nil || def == nil {
		return fmt.Errorf("%w: viewer and definition must not be nil", substrate.ErrInvalidArgument)
	}

	a.mu.Lock()
	a.assigned[viewer.ID()] = def
	a.mu.Unlock()

	return a.Refresh(ctx)
}

// Get returns the definition assigned to viewer.
func (a *Assignments) Get(viewer substrate.Viewer) (*Definition, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	def, ok := a.assigned[viewer.ID()]
	return def, ok
}

// Clear removes viewer's assignment and unregisters the team last written for
// it, on whichever scoreboard it was written to.
func (a *Assignments) Clear(ctx context.Context, viewer substrate.Viewer) error {
	a.mu.Lock()
	delete(a.assigned, viewer.ID())
	previous, hadTeam := a.applied[viewer.ID()]
	delete(a.applied, viewer.ID())
	a.mu.Unlock()

	if !hadTeam {
		return nil
	}
	return unregisterIfPresent(ctx, previous.scoreboard, previous.name)
}

// Refresh recomputes the ordering team of every online viewer. Viewers without
// a scoreboard are skipped. A failing viewer does not stop the others; all
// failures are returned joined.
func (a *Assignments) Refresh(ctx context.Context) error {
	var errs []error
	for _, viewer := range a.directory.Online() {
		if err := a.apply(ctx, viewer); err != nil {
			errs = append(errs, fmt.Errorf("viewer %s: %w", viewer.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// apply writes viewer's ordering team onto the scoreboard the viewer currently sees.
func (a *Assignments) apply(ctx context.Context, viewer substrate.Viewer) error {
	a.mu.RLock()
	def, ok := a.assigned[viewer.ID()]
	previous, hadPrevious := a.applied[viewer.ID()]
	a.mu.RUnlock()

	if !ok {
		return ErrNoAssignment
	}

	sb, err := a.manager.ScoreboardOf(ctx, viewer)
	if substrate.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get scoreboard: %w", err)
	}

	name, err := identifier.ViewerGroup(def.Priority(), viewer.ID())
	if err != nil {
		return err
	}

	// A viewer moved to another scoreboard or priority leaves no team behind.
	if hadPrevious && (previous.name != name || previous.scoreboard.ID() != sb.ID()) {
		if err := unregisterIfPresent(ctx, previous.scoreboard, previous.name); err != nil {
			return err
		}
	}

	team, err := sb.Team(ctx, name)
	if substrate.IsNotFound(err) {
		team, err = sb.RegisterTeam(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("failed to get team %s: %w", name, err)
	}

	if err := team.SetPrefix(ctx, def.Label().Append(labelSeparator)); err != nil {
		return fmt.Errorf("failed to set prefix: %w", err)
	}
	if err := team.SetColor(ctx, def.Color()); err != nil {
		return fmt.Errorf("failed to set color: %w", err)
	}
	for option, status := range def.Options() {
		if err := team.SetOption(ctx, option, status); err != nil {
			return fmt.Errorf("failed to set option %s: %w", option, err)
		}
	}

	entries, err := team.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list team entries: %w", err)
	}
	for _, entry := range entries {
		if entry == viewer.Name() {
			continue
		}
		if err := team.RemoveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to remove entry %s: %w", entry, err)
		}
	}
	if err := team.AddEntry(ctx, viewer.Name()); err != nil {
		return fmt.Errorf("failed to add %s to team: %w", viewer.Name(), err)
	}

	a.mu.Lock()
	a.applied[viewer.ID()] = appliedTeam{scoreboard: sb, name: name}
	a.mu.Unlock()
	return nil
}

func unregisterIfPresent(ctx context.Context, sb substrate.Scoreboard, name string) error {
	team, err := sb.Team(ctx, name)
	if substrate.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get team %s: %w", name, err)
	}
	if err := team.Unregister(ctx); err != nil {
		return fmt.Errorf("failed to unregister team %s: %w", name, err)
	}
	return nil
}
