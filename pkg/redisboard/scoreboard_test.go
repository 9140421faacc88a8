package redisboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

func newScoreboard(t *testing.T) (*Client, *Scoreboard) {
	t.Helper()
	client, _ := setupTestClient(t)
	sb, err := client.NewScoreboard(context.Background())
	require.NoError(t, err)
	return client, sb.(*Scoreboard)
}

func TestObjective(t *testing.T) {
	_, sb := newScoreboard(t)
	ctx := context.Background()

	t.Run("register and look up", func(t *testing.T) {
		obj, err := sb.RegisterObjective(ctx, "lobby", richtext.Colored("Lobby", richtext.Gold), substrate.SlotSidebar)
		require.NoError(t, err)
		assert.Equal(t, "lobby", obj.Name())

		got, err := sb.Objective(ctx, "lobby")
		require.NoError(t, err)
		title, err := got.(*Objective).DisplayName(ctx)
		require.NoError(t, err)
		assert.True(t, richtext.Colored("Lobby", richtext.Gold).Equal(title))
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		_, err := sb.RegisterObjective(ctx, "lobby", nil, substrate.SlotSidebar)
		assert.ErrorIs(t, err, substrate.ErrAlreadyExists)
	})

	t.Run("unknown objective", func(t *testing.T) {
		_, err := sb.Objective(ctx, "missing")
		assert.ErrorIs(t, err, substrate.ErrNotFound)
	})

	t.Run("display name update keeps slot", func(t *testing.T) {
		got, err := sb.Objective(ctx, "lobby")
		require.NoError(t, err)
		obj := got.(*Objective)

		require.NoError(t, obj.SetDisplayName(ctx, richtext.Plain("Hub")))
		title, err := obj.DisplayName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hub", title.PlainText())
		slot, err := obj.Slot(ctx)
		require.NoError(t, err)
		assert.Equal(t, substrate.SlotSidebar, slot)
	})
}

func TestScores(t *testing.T) {
	_, sb := newScoreboard(t)
	ctx := context.Background()

	raw, err := sb.RegisterObjective(ctx, "lobby", nil, substrate.SlotSidebar)
	require.NoError(t, err)
	obj := raw.(*Objective)

	require.NoError(t, obj.SetScore(ctx, "a", 2))
	require.NoError(t, obj.SetScore(ctx, "b", 1))
	require.NoError(t, obj.SetScore(ctx, "c", -1))

	scores, err := obj.Scores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ScoredEntry{{"a", 2}, {"b", 1}, {"c", -1}}, scores)

	require.NoError(t, sb.ResetScores(ctx, "b"))
	_, err = obj.Score(ctx, "b")
	assert.ErrorIs(t, err, substrate.ErrNotFound)

	score, err := obj.Score(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, -1, score)

	// Resetting an entry without scores is a no-op.
	assert.NoError(t, sb.ResetScores(ctx, "nobody"))
}

func TestTeam(t *testing.T) {
	_, sb := newScoreboard(t)
	ctx := context.Background()

	raw, err := sb.RegisterTeam(ctx, "line_1")
	require.NoError(t, err)
	team := raw.(*Team)

	_, err = sb.RegisterTeam(ctx, "line_1")
	assert.ErrorIs(t, err, substrate.ErrAlreadyExists)

	require.NoError(t, team.SetPrefix(ctx, richtext.Colored("[Admin] ", richtext.Red)))
	require.NoError(t, team.SetColor(ctx, richtext.Gold))
	require.NoError(t, team.SetOption(ctx, substrate.OptionCollisionRule, substrate.StatusNever))

	state, err := team.State(ctx)
	require.NoError(t, err)
	assert.True(t, richtext.Colored("[Admin] ", richtext.Red).Equal(state.Prefix))
	assert.Equal(t, richtext.Gold, state.Color)
	assert.Equal(t, map[substrate.Option]substrate.OptionStatus{
		substrate.OptionCollisionRule: substrate.StatusNever,
	}, state.Options)

	names, err := sb.Teams(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"line_1"}, names)
}

func TestTeam_EntryBelongsToOneTeam(t *testing.T) {
	_, sb := newScoreboard(t)
	ctx := context.Background()

	rawA, err := sb.RegisterTeam(ctx, "a")
	require.NoError(t, err)
	rawB, err := sb.RegisterTeam(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, rawA.AddEntry(ctx, "Steve"))
	require.NoError(t, rawB.AddEntry(ctx, "Steve"))

	entriesA, err := rawA.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entriesA)
	entriesB, err := rawB.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve"}, entriesB)

	// Removing from a team the entry is not in is a no-op.
	require.NoError(t, rawA.RemoveEntry(ctx, "Steve"))
	entriesB, err = rawB.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve"}, entriesB)

	require.NoError(t, rawB.RemoveEntry(ctx, "Steve"))
	entriesB, err = rawB.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entriesB)
}

func TestTeam_Unregister(t *testing.T) {
	_, sb := newScoreboard(t)
	ctx := context.Background()

	rawA, err := sb.RegisterTeam(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, rawA.AddEntry(ctx, "Steve"))
	require.NoError(t, rawA.Unregister(ctx))

	_, err = sb.Team(ctx, "a")
	assert.ErrorIs(t, err, substrate.ErrNotFound)
	assert.ErrorIs(t, rawA.SetColor(ctx, richtext.Red), substrate.ErrInvalidState)
	assert.ErrorIs(t, rawA.Unregister(ctx), substrate.ErrInvalidState)

	// The released entry can join another team.
	rawB, err := sb.RegisterTeam(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, rawB.AddEntry(ctx, "Steve"))
	entries, err := rawB.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve"}, entries)
}

func TestScoreboards_AreIsolated(t *testing.T) {
	client, first := newScoreboard(t)
	ctx := context.Background()
	second, err := client.NewScoreboard(ctx)
	require.NoError(t, err)

	_, err = first.RegisterTeam(ctx, "line_1")
	require.NoError(t, err)

	names, err := second.Teams(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
