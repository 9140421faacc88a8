// Package memory is an in-process substrate. Every mutation is appended to a
// journal so callers (the preview command, tests) can see exactly what a
// render did.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// OpKind names a journaled mutation.
type OpKind string

const (
	OpRegisterObjective OpKind = "register_objective"
	OpSetDisplayName    OpKind = "set_display_name"
	OpSetScore          OpKind = "set_score"
	OpResetScores       OpKind = "reset_scores"
	OpRegisterTeam      OpKind = "register_team"
	OpUnregisterTeam    OpKind = "unregister_team"
	OpSetPrefix         OpKind = "set_prefix"
	OpSetColor          OpKind = "set_color"
	OpSetOption         OpKind = "set_option"
	OpAddEntry          OpKind = "add_entry"
	OpRemoveEntry       OpKind = "remove_entry"
)

// Op is one journaled mutation.
type Op struct {
	Kind  OpKind
	Name  string // team or objective name
	Entry string
	Score int
	Value string
}

// Manager is an in-memory substrate.Manager. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	bindings map[uuid.UUID]*Scoreboard
}

var _ substrate.Manager = (*Manager)(nil)

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{bindings: make(map[uuid.UUID]*Scoreboard)}
}

// NewScoreboard allocates a fresh scoreboard.
func (m *Manager) NewScoreboard(_ context.Context) (substrate.Scoreboard, error) {
	return newScoreboard(&m.mu), nil
}

// Bind makes viewer see sb. sb must come from this manager.
func (m *Manager) Bind(_ context.Context, viewer substrate.Viewer, sb substrate.Scoreboard) error {
	board, ok := sb.(*Scoreboard)
	if !ok {
		return fmt.Errorf("%w: scoreboard %s does not belong to the memory substrate", substrate.ErrInvalidArgument, sb.ID())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[viewer.ID()] = board
	return nil
}

// ScoreboardOf returns the scoreboard bound to viewer.
func (m *Manager) ScoreboardOf(_ context.Context, viewer substrate.Viewer) (substrate.Scoreboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	board, ok := m.bindings[viewer.ID()]
	if !ok {
		return nil, fmt.Errorf("scoreboard for viewer %s: %w", viewer.ID(), substrate.ErrNotFound)
	}
	return board, nil
}

// Unbind forgets the viewer's binding, as when the viewer disconnects.
func (m *Manager) Unbind(viewer substrate.Viewer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, viewer.ID())
}

// Scoreboard is an in-memory substrate.Scoreboard.
type Scoreboard struct {
	mu         *sync.Mutex
	id         string
	objectives map[string]*Objective
	teams      map[string]*Team
	entryTeam  map[string]*Team
	journal    []Op
}

var _ substrate.Scoreboard = (*Scoreboard)(nil)

func newScoreboard(mu *sync.Mutex) *Scoreboard {
	return &Scoreboard{
		mu:         mu,
		id:         uuid.New().String(),
		objectives: make(map[string]*Objective),
		teams:      make(map[string]*Team),
		entryTeam:  make(map[string]*Team),
	}
}

// ID returns the scoreboard's identifier.
func (s *Scoreboard) ID() string {
	return s.id
}

func (s *Scoreboard) record(op Op) {
	s.journal = append(s.journal, op)
}

// RegisterObjective creates an objective.
func (s *Scoreboard) RegisterObjective(_ context.Context, name string, displayName richtext.Component, slot substrate.DisplaySlot) (substrate.Objective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objectives[name]; exists {
		return nil, fmt.Errorf("objective %q: %w", name, substrate.ErrAlreadyExists)
	}

	obj := &Objective{
		board:       s,
		name:        name,
		displayName: displayName,
		slot:        slot,
		scores:      make(map[string]int),
	}
	s.objectives[name] = obj
	s.record(Op{Kind: OpRegisterObjective, Name: name, Value: displayName.PlainText()})
	return obj, nil
}

// Objective returns a registered objective.
func (s *Scoreboard) Objective(_ context.Context, name string) (substrate.Objective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objectives[name]
	if !ok {
		return nil, fmt.Errorf("objective %q: %w", name, substrate.ErrNotFound)
	}
	return obj, nil
}

// Team returns a registered team.
func (s *Scoreboard) Team(_ context.Context, name string) (substrate.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[name]
	if !ok {
		return nil, fmt.Errorf("team %q: %w", name, substrate.ErrNotFound)
	}
	return team, nil
}

// RegisterTeam creates a team.
func (s *Scoreboard) RegisterTeam(_ context.Context, name string) (substrate.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teams[name]; exists {
		return nil, fmt.Errorf("team %q: %w", name, substrate.ErrAlreadyExists)
	}

	team := &Team{
		board:   s,
		name:    name,
		color:   richtext.DefaultColor,
		options: make(map[substrate.Option]substrate.OptionStatus),
	}
	s.teams[name] = team
	s.record(Op{Kind: OpRegisterTeam, Name: name})
	return team, nil
}

// Teams lists the registered team names in sorted order.
func (s *Scoreboard) Teams(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.teams))
	for name := range s.teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ResetScores removes entry from every objective.
func (s *Scoreboard) ResetScores(_ context.Context, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.objectives {
		delete(obj.scores, entry)
	}
	s.record(Op{Kind: OpResetScores, Entry: entry})
	return nil
}

// Journal returns a copy of every mutation recorded so far.
func (s *Scoreboard) Journal() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.journal)
}

// ResetJournal discards the recorded mutations.
func (s *Scoreboard) ResetJournal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = nil
}

// Line is one rendered sidebar row.
type Line struct {
	Entry  string
	Score  int
	Prefix richtext.Component
	Color  richtext.Color
}

// Sidebar returns the rows of the objective shown in the sidebar slot, highest
// score first. Each row carries the prefix of the team its entry belongs to.
// Returns ErrNotFound if no objective occupies the sidebar.
func (s *Scoreboard) Sidebar() (richtext.Component, []Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var obj *Objective
	for _, o := range s.objectives {
		if o.slot == substrate.SlotSidebar {
			obj = o
			break
		}
	}
	if obj == nil {
		return nil, nil, fmt.Errorf("sidebar objective: %w", substrate.ErrNotFound)
	}

	lines := make([]Line, 0, len(obj.scores))
	for entry, score := range obj.scores {
		line := Line{Entry: entry, Score: score, Color: richtext.DefaultColor}
		if team, ok := s.entryTeam[entry]; ok {
			line.Prefix = team.prefix
			line.Color = team.color
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Score != lines[j].Score {
			return lines[i].Score > lines[j].Score
		}
		return lines[i].Entry < lines[j].Entry
	})
	return obj.displayName, lines, nil
}

// Objective is an in-memory substrate.Objective.
type Objective struct {
	board       *Scoreboard
	name        string
	displayName richtext.Component
	slot        substrate.DisplaySlot
	scores      map[string]int
}

// Name returns the objective name.
func (o *Objective) Name() string {
	return o.name
}

// DisplayName returns the current display name.
func (o *Objective) DisplayName() richtext.Component {
	o.board.mu.Lock()
	defer o.board.mu.Unlock()
	return o.displayName
}

// SetDisplayName replaces the display name.
func (o *Objective) SetDisplayName(_ context.Context, displayName richtext.Component) error {
	o.board.mu.Lock()
	defer o.board.mu.Unlock()
	o.displayName = displayName
	o.board.record(Op{Kind: OpSetDisplayName, Name: o.name, Value: displayName.PlainText()})
	return nil
}

// SetScore sets entry's score.
func (o *Objective) SetScore(_ context.Context, entry string, score int) error {
	o.board.mu.Lock()
	defer o.board.mu.Unlock()
	o.scores[entry] = score
	o.board.record(Op{Kind: OpSetScore, Name: o.name, Entry: entry, Score: score})
	return nil
}

// Score returns entry's score and whether it has one.
func (o *Objective) Score(entry string) (int, bool) {
	o.board.mu.Lock()
	defer o.board.mu.Unlock()
	score, ok := o.scores[entry]
	return score, ok
}

// Team is an in-memory substrate.Team.
type Team struct {
	board        *Scoreboard
	name         string
	prefix       richtext.Component
	color        richtext.Color
	options      map[substrate.Option]substrate.OptionStatus
	entries      []string
	unregistered bool
}

// Name returns the team name.
func (t *Team) Name() string {
	return t.name
}

func (t *Team) checkRegistered() error {
	if t.unregistered {
		return fmt.Errorf("%w: team %q is unregistered", substrate.ErrInvalidState, t.name)
	}
	return nil
}

// SetPrefix replaces the team prefix.
func (t *Team) SetPrefix(_ context.Context, prefix richtext.Component) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}
	t.prefix = slices.Clone(prefix)
	t.board.record(Op{Kind: OpSetPrefix, Name: t.name, Value: prefix.PlainText()})
	return nil
}

// Prefix returns the current prefix.
func (t *Team) Prefix() richtext.Component {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return t.prefix
}

// SetColor replaces the team colour.
func (t *Team) SetColor(_ context.Context, color richtext.Color) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}
	t.color = color
	t.board.record(Op{Kind: OpSetColor, Name: t.name, Value: string(color)})
	return nil
}

// Color returns the current colour.
func (t *Team) Color() richtext.Color {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return t.color
}

// SetOption sets a display option.
func (t *Team) SetOption(_ context.Context, option substrate.Option, status substrate.OptionStatus) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}
	t.options[option] = status
	t.board.record(Op{Kind: OpSetOption, Name: t.name, Entry: string(option), Value: string(status)})
	return nil
}

// Option returns the status of option and whether it was set.
func (t *Team) Option(option substrate.Option) (substrate.OptionStatus, bool) {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	status, ok := t.options[option]
	return status, ok
}

// Entries returns the team members.
func (t *Team) Entries(_ context.Context) ([]string, error) {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return nil, err
	}
	return slices.Clone(t.entries), nil
}

// AddEntry adds entry, moving it out of any other team.
func (t *Team) AddEntry(_ context.Context, entry string) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}

	current, ok := t.board.entryTeam[entry]
	if ok && current == t {
		return nil
	}
	if ok {
		current.entries = slices.DeleteFunc(current.entries, func(e string) bool { return e == entry })
	}
	t.entries = append(t.entries, entry)
	t.board.entryTeam[entry] = t
	t.board.record(Op{Kind: OpAddEntry, Name: t.name, Entry: entry})
	return nil
}

// RemoveEntry removes entry if it is a member.
func (t *Team) RemoveEntry(_ context.Context, entry string) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}

	if t.board.entryTeam[entry] != t {
		return nil
	}
	t.entries = slices.DeleteFunc(t.entries, func(e string) bool { return e == entry })
	delete(t.board.entryTeam, entry)
	t.board.record(Op{Kind: OpRemoveEntry, Name: t.name, Entry: entry})
	return nil
}

// Unregister removes the team and releases its members.
func (t *Team) Unregister(_ context.Context) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if err := t.checkRegistered(); err != nil {
		return err
	}

	for _, entry := range t.entries {
		delete(t.board.entryTeam, entry)
	}
	t.entries = nil
	t.unregistered = true
	delete(t.board.teams, t.name)
	t.board.record(Op{Kind: OpUnregisterTeam, Name: t.name})
	return nil
}
