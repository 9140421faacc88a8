package redisboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Scoreboard is a handle on a scoreboard stored in Redis.
type Scoreboard struct {
	client *Client
	id     string
}

var _ substrate.Scoreboard = (*Scoreboard)(nil)

// ID returns the scoreboard id.
func (s *Scoreboard) ID() string {
	return s.id
}

func (s *Scoreboard) rdb() *redis.Client {
	return s.client.rdb
}

func (s *Scoreboard) instance() string {
	return s.client.instanceName
}

func (s *Scoreboard) publish(ctx context.Context, ev Event) error {
	ev.Scoreboard = s.id
	return s.client.publish(ctx, ev)
}

// RegisterObjective creates an objective, or returns ErrAlreadyExists.
func (s *Scoreboard) RegisterObjective(ctx context.Context, name string, displayName richtext.Component, slot substrate.DisplaySlot) (substrate.Objective, error) {
	value, err := encodeObjective(displayName, slot)
	if err != nil {
		return nil, err
	}

	created, err := s.rdb().HSetNX(ctx, ObjectivesKey(s.instance(), s.id), name, value).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to write objective to Redis: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("objective %q: %w", name, substrate.ErrAlreadyExists)
	}

	if err := s.publish(ctx, Event{Kind: EventRegisterObjective, Name: name, Value: displayName.PlainText()}); err != nil {
		return nil, err
	}
	return &Objective{board: s, name: name}, nil
}

// Objective returns a registered objective, or ErrNotFound.
func (s *Scoreboard) Objective(ctx context.Context, name string) (substrate.Objective, error) {
	exists, err := s.rdb().HExists(ctx, ObjectivesKey(s.instance(), s.id), name).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check objective existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("objective %q: %w", name, substrate.ErrNotFound)
	}
	return &Objective{board: s, name: name}, nil
}

// Objectives lists the names of the registered objectives in sorted order.
func (s *Scoreboard) Objectives(ctx context.Context) ([]string, error) {
	names, err := s.rdb().HKeys(ctx, ObjectivesKey(s.instance(), s.id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list objectives: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Team returns a registered team, or ErrNotFound.
func (s *Scoreboard) Team(ctx context.Context, name string) (substrate.Team, error) {
	exists, err := s.rdb().SIsMember(ctx, TeamsKey(s.instance(), s.id), name).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check team existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("team %q: %w", name, substrate.ErrNotFound)
	}
	return &Team{board: s, name: name}, nil
}

// RegisterTeam creates an empty team, or returns ErrAlreadyExists.
func (s *Scoreboard) RegisterTeam(ctx context.Context, name string) (substrate.Team, error) {
	added, err := s.rdb().SAdd(ctx, TeamsKey(s.instance(), s.id), name).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to write team to Redis: %w", err)
	}
	if added == 0 {
		return nil, fmt.Errorf("team %q: %w", name, substrate.ErrAlreadyExists)
	}

	if err := s.publish(ctx, Event{Kind: EventRegisterTeam, Name: name}); err != nil {
		return nil, err
	}
	return &Team{board: s, name: name}, nil
}

// Teams lists the registered team names in sorted order.
func (s *Scoreboard) Teams(ctx context.Context) ([]string, error) {
	names, err := s.rdb().SMembers(ctx, TeamsKey(s.instance(), s.id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// ResetScores removes entry from every objective.
func (s *Scoreboard) ResetScores(ctx context.Context, entry string) error {
	objectives, err := s.Objectives(ctx)
	if err != nil {
		return err
	}

	_, err = s.rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range objectives {
			pipe.ZRem(ctx, ScoresKey(s.instance(), s.id, name), entry)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset scores of %q: %w", entry, err)
	}
	return s.publish(ctx, Event{Kind: EventResetScores, Entry: entry})
}

// Objective is a handle on an objective stored in Redis.
type Objective struct {
	board *Scoreboard
	name  string
}

var _ substrate.Objective = (*Objective)(nil)

// Name returns the objective name.
func (o *Objective) Name() string {
	return o.name
}

func (o *Objective) record(ctx context.Context) (objectiveRecord, error) {
	raw, err := o.board.rdb().HGet(ctx, ObjectivesKey(o.board.instance(), o.board.id), o.name).Result()
	if errors.Is(err, redis.Nil) {
		return objectiveRecord{}, fmt.Errorf("objective %q: %w", o.name, substrate.ErrNotFound)
	}
	if err != nil {
		return objectiveRecord{}, fmt.Errorf("failed to read objective from Redis: %w", err)
	}
	return decodeObjective(raw)
}

// DisplayName returns the current title.
func (o *Objective) DisplayName(ctx context.Context) (richtext.Component, error) {
	rec, err := o.record(ctx)
	if err != nil {
		return nil, err
	}
	return rec.DisplayName, nil
}

// Slot returns the display slot the objective was registered in.
func (o *Objective) Slot(ctx context.Context) (substrate.DisplaySlot, error) {
	rec, err := o.record(ctx)
	if err != nil {
		return "", err
	}
	return rec.Slot, nil
}

// SetDisplayName replaces the title, keeping the display slot.
func (o *Objective) SetDisplayName(ctx context.Context, displayName richtext.Component) error {
	rec, err := o.record(ctx)
	if err != nil {
		return err
	}
	value, err := encodeObjective(displayName, rec.Slot)
	if err != nil {
		return err
	}
	if err := o.board.rdb().HSet(ctx, ObjectivesKey(o.board.instance(), o.board.id), o.name, value).Err(); err != nil {
		return fmt.Errorf("failed to update objective: %w", err)
	}
	return o.board.publish(ctx, Event{Kind: EventSetDisplayName, Name: o.name, Value: displayName.PlainText()})
}

// SetScore sets the score of entry.
func (o *Objective) SetScore(ctx context.Context, entry string, score int) error {
	z := redis.Z{Score: float64(score), Member: entry}
	if err := o.board.rdb().ZAdd(ctx, ScoresKey(o.board.instance(), o.board.id, o.name), z).Err(); err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}
	return o.board.publish(ctx, Event{Kind: EventSetScore, Name: o.name, Entry: entry, Score: score})
}

// Score returns the score of entry, or ErrNotFound.
func (o *Objective) Score(ctx context.Context, entry string) (int, error) {
	score, err := o.board.rdb().ZScore(ctx, ScoresKey(o.board.instance(), o.board.id, o.name), entry).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("score of %q: %w", entry, substrate.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read score: %w", err)
	}
	return int(score), nil
}

// ScoredEntry is an entry with its score.
type ScoredEntry struct {
	Entry string `json:"entry"`
	Score int    `json:"score"`
}

// Scores returns every entry of the objective, highest score first.
func (o *Objective) Scores(ctx context.Context) ([]ScoredEntry, error) {
	results, err := o.board.rdb().ZRevRangeWithScores(ctx, ScoresKey(o.board.instance(), o.board.id, o.name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	out := make([]ScoredEntry, 0, len(results))
	for _, z := range results {
		out = append(out, ScoredEntry{Entry: z.Member.(string), Score: int(z.Score)})
	}
	return out, nil
}

// Team is a handle on a team stored in Redis. A handle whose team was
// unregistered returns ErrInvalidState.
type Team struct {
	board *Scoreboard
	name  string
}

var _ substrate.Team = (*Team)(nil)

// Name returns the team name.
func (t *Team) Name() string {
	return t.name
}

func (t *Team) key() string {
	return TeamKey(t.board.instance(), t.board.id, t.name)
}

func (t *Team) entriesKey() string {
	return TeamEntriesKey(t.board.instance(), t.board.id, t.name)
}

func (t *Team) checkRegistered(ctx context.Context) error {
	exists, err := t.board.rdb().SIsMember(ctx, TeamsKey(t.board.instance(), t.board.id), t.name).Result()
	if err != nil {
		return fmt.Errorf("failed to check team existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: team %q is not registered", substrate.ErrInvalidState, t.name)
	}
	return nil
}

func (t *Team) setField(ctx context.Context, field, value string, ev Event) error {
	if err := t.checkRegistered(ctx); err != nil {
		return err
	}
	if err := t.board.rdb().HSet(ctx, t.key(), field, value).Err(); err != nil {
		return fmt.Errorf("failed to write team %s: %w", field, err)
	}
	ev.Name = t.name
	return t.board.publish(ctx, ev)
}

// SetPrefix sets the label shown before member names.
func (t *Team) SetPrefix(ctx context.Context, prefix richtext.Component) error {
	value, err := EncodeComponent(prefix)
	if err != nil {
		return err
	}
	return t.setField(ctx, "prefix", value, Event{Kind: EventSetPrefix, Value: prefix.PlainText()})
}

// SetColor sets the colour of member names.
func (t *Team) SetColor(ctx context.Context, color richtext.Color) error {
	return t.setField(ctx, "color", string(color), Event{Kind: EventSetColor, Value: string(color)})
}

// SetOption sets a display option.
func (t *Team) SetOption(ctx context.Context, option substrate.Option, status substrate.OptionStatus) error {
	return t.setField(ctx, optionFieldPrefix+string(option), string(status),
		Event{Kind: EventSetOption, Entry: string(option), Value: string(status)})
}

// State returns the stored prefix, colour and options.
func (t *Team) State(ctx context.Context) (*TeamState, error) {
	if err := t.checkRegistered(ctx); err != nil {
		return nil, err
	}
	hash, err := t.board.rdb().HGetAll(ctx, t.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read team from Redis: %w", err)
	}
	return HashToTeam(hash)
}

// Entries returns the members in sorted order.
func (t *Team) Entries(ctx context.Context) ([]string, error) {
	if err := t.checkRegistered(ctx); err != nil {
		return nil, err
	}
	entries, err := t.board.rdb().SMembers(ctx, t.entriesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read team entries: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

// currentTeam returns the team entry belongs to, "" if none.
func (t *Team) currentTeam(ctx context.Context, entry string) (string, error) {
	name, err := t.board.rdb().HGet(ctx, EntryTeamKey(t.board.instance(), t.board.id), entry).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read entry index: %w", err)
	}
	return name, nil
}

// AddEntry adds entry, moving it out of any other team of the scoreboard.
func (t *Team) AddEntry(ctx context.Context, entry string) error {
	if err := t.checkRegistered(ctx); err != nil {
		return err
	}
	current, err := t.currentTeam(ctx, entry)
	if err != nil {
		return err
	}
	if current == t.name {
		return nil
	}

	_, err = t.board.rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if current != "" {
			pipe.SRem(ctx, TeamEntriesKey(t.board.instance(), t.board.id, current), entry)
		}
		pipe.SAdd(ctx, t.entriesKey(), entry)
		pipe.HSet(ctx, EntryTeamKey(t.board.instance(), t.board.id), entry, t.name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add entry %q: %w", entry, err)
	}
	return t.board.publish(ctx, Event{Kind: EventAddEntry, Name: t.name, Entry: entry})
}

// RemoveEntry removes entry if it is a member.
func (t *Team) RemoveEntry(ctx context.Context, entry string) error {
	if err := t.checkRegistered(ctx); err != nil {
		return err
	}
	current, err := t.currentTeam(ctx, entry)
	if err != nil {
		return err
	}
	if current != t.name {
		return nil
	}

	_, err = t.board.rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, t.entriesKey(), entry)
		pipe.HDel(ctx, EntryTeamKey(t.board.instance(), t.board.id), entry)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove entry %q: %w", entry, err)
	}
	return t.board.publish(ctx, Event{Kind: EventRemoveEntry, Name: t.name, Entry: entry})
}

// Unregister deletes the team and releases its members.
func (t *Team) Unregister(ctx context.Context) error {
	entries, err := t.Entries(ctx)
	if err != nil {
		return err
	}

	_, err = t.board.rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(entries) > 0 {
			pipe.HDel(ctx, EntryTeamKey(t.board.instance(), t.board.id), entries...)
		}
		pipe.Del(ctx, t.key(), t.entriesKey())
		pipe.SRem(ctx, TeamsKey(t.board.instance(), t.board.id), t.name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to unregister team %q: %w", t.name, err)
	}
	return t.board.publish(ctx, Event{Kind: EventUnregisterTeam, Name: t.name})
}
